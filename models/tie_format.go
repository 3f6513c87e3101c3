package models

// TieFormat defines the collections of sub-matchUps inside one TEAM matchUp.
type TieFormat struct {
	TieFormatName         string                 `json:"tieFormatName,omitempty"`
	WinCriteria           WinCriteria            `json:"winCriteria"`
	CollectionDefinitions []CollectionDefinition `json:"collectionDefinitions"`
}

type WinCriteria struct {
	ValueGoal int `json:"valueGoal"`
}

type CollectionDefinition struct {
	CollectionID   string      `json:"collectionId"`
	CollectionName string      `json:"collectionName,omitempty"`
	MatchUpType    MatchUpType `json:"matchUpType"`
	MatchUpCount   int         `json:"matchUpCount"`
	MatchUpFormat  string      `json:"matchUpFormat,omitempty"`
	MatchUpValue   int         `json:"matchUpValue,omitempty"`
}

// TotalValue sums the value of every collection matchUp; a missing
// matchUpValue counts as one.
func (t *TieFormat) TotalValue() int {
	total := 0
	for _, c := range t.CollectionDefinitions {
		value := c.MatchUpValue
		if value == 0 {
			value = 1
		}
		total += value * c.MatchUpCount
	}
	return total
}
