package models

import (
	"encoding/json"
	"time"
)

// DrawType identifies the generator used to build a draw.
type DrawType string

const (
	DrawTypeSingleElimination          DrawType = "SINGLE_ELIMINATION"
	DrawTypeDoubleElimination          DrawType = "DOUBLE_ELIMINATION"
	DrawTypeRoundRobin                 DrawType = "ROUND_ROBIN"
	DrawTypeRoundRobinWithPlayoff      DrawType = "ROUND_ROBIN_WITH_PLAYOFF"
	DrawTypeFeedIn                     DrawType = "FEED_IN"
	DrawTypeFeedInChampionship         DrawType = "FEED_IN_CHAMPIONSHIP"
	DrawTypeFeedInChampionshipToSF     DrawType = "FEED_IN_CHAMPIONSHIP_TO_SF"
	DrawTypeFeedInChampionshipToQF     DrawType = "FEED_IN_CHAMPIONSHIP_TO_QF"
	DrawTypeFeedInChampionshipToR16    DrawType = "FEED_IN_CHAMPIONSHIP_TO_R16"
	DrawTypeModifiedFeedInChampionship DrawType = "MODIFIED_FEED_IN_CHAMPIONSHIP"
	DrawTypeFirstMatchLoserConsolation DrawType = "FIRST_MATCH_LOSER_CONSOLATION"
	DrawTypeFirstRoundLoserConsolation DrawType = "FIRST_ROUND_LOSER_CONSOLATION"
	DrawTypeCurtisConsolation          DrawType = "CURTIS_CONSOLATION"
	DrawTypeCompass                    DrawType = "COMPASS"
	DrawTypeOlympic                    DrawType = "OLYMPIC"
	DrawTypePlayoff                    DrawType = "PLAY_OFF"
	DrawTypeLuckyDraw                  DrawType = "LUCKY_DRAW"
	DrawTypeAdHoc                      DrawType = "AD_HOC"
)

// Stage is the phase of an event a structure belongs to.
type Stage string

const (
	StageQualifying           Stage = "QUALIFYING"
	StageMain                 Stage = "MAIN"
	StageConsolation          Stage = "CONSOLATION"
	StagePlayoff              Stage = "PLAY_OFF"
	StageVoluntaryConsolation Stage = "VOLUNTARY_CONSOLATION"
)

type MatchUpType string

const (
	MatchUpTypeSingles MatchUpType = "SINGLES"
	MatchUpTypeDoubles MatchUpType = "DOUBLES"
	MatchUpTypeTeam    MatchUpType = "TEAM"
)

// DrawDefinition is the aggregate for one event's bracket(s). Structures and
// links are only mutated through the brackets package.
type DrawDefinition struct {
	DrawID        string       `json:"drawId"`
	DrawName      string       `json:"drawName,omitempty"`
	DrawType      DrawType     `json:"drawType"`
	EventID       string       `json:"eventId,omitempty"`
	MatchUpType   MatchUpType  `json:"matchUpType,omitempty"`
	MatchUpFormat string       `json:"matchUpFormat,omitempty"`
	TieFormat     *TieFormat   `json:"tieFormat,omitempty"`
	Entries       []Entry      `json:"entries,omitempty"`
	Structures    []*Structure `json:"structures"`
	Links         []*DrawLink  `json:"links"`
	Extensions    []Extension  `json:"extensions,omitempty"`
	UpdatedAt     *time.Time   `json:"updatedAt,omitempty"`
}

// EntryStatus describes how a participant got into the draw.
type EntryStatus string

const (
	EntryStatusDirectAcceptance EntryStatus = "DIRECT_ACCEPTANCE"
	EntryStatusWildcard         EntryStatus = "WILDCARD"
	EntryStatusQualifier        EntryStatus = "QUALIFIER"
	EntryStatusLuckyLoser       EntryStatus = "LUCKY_LOSER"
	EntryStatusAlternate        EntryStatus = "ALTERNATE"
	EntryStatusWithdrawn        EntryStatus = "WITHDRAWN"
)

type Entry struct {
	ParticipantID string      `json:"participantId"`
	EntryStatus   EntryStatus `json:"entryStatus,omitempty"`
	EntryStage    Stage       `json:"entryStage,omitempty"`
	EntryPosition int         `json:"entryPosition,omitempty"`
	SeedValue     int         `json:"seedValue,omitempty"`
}

// Accepted reports whether the entry takes a draw position.
func (e Entry) Accepted() bool {
	switch e.EntryStatus {
	case EntryStatusAlternate, EntryStatusWithdrawn:
		return false
	}
	return true
}

// Extension is a named, opaque JSON value attached to a record.
type Extension struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// FindExtension returns the extension with the given name, if present.
func FindExtension(extensions []Extension, name string) (Extension, bool) {
	for _, ext := range extensions {
		if ext.Name == name {
			return ext, true
		}
	}
	return Extension{}, false
}

// SetExtension encodes value and replaces (or appends) the named extension.
func SetExtension(extensions []Extension, name string, value interface{}) ([]Extension, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return extensions, err
	}
	for i := range extensions {
		if extensions[i].Name == name {
			extensions[i].Value = raw
			return extensions, nil
		}
	}
	return append(extensions, Extension{Name: name, Value: raw}), nil
}

// RemoveExtension drops the named extension.
func RemoveExtension(extensions []Extension, name string) []Extension {
	out := extensions[:0]
	for _, ext := range extensions {
		if ext.Name != name {
			out = append(out, ext)
		}
	}
	return out
}

// AllMatchUps returns the matchUps of every structure, flattening containers.
// Tie matchUps stay nested under their parent.
func (d *DrawDefinition) AllMatchUps() []*MatchUp {
	var out []*MatchUp
	for _, s := range d.Structures {
		out = append(out, s.AllMatchUps()...)
	}
	return out
}
