package models

// StructureType separates leaf structures, which own matchUps, from
// containers, which own child structures (round robin groups).
type StructureType string

const (
	StructureTypeItem      StructureType = "ITEM"
	StructureTypeContainer StructureType = "CONTAINER"
)

type FinishingPosition string

const (
	FinishingPositionRoundOutcome FinishingPosition = "ROUND_OUTCOME"
	FinishingPositionWinRatio     FinishingPosition = "WIN_RATIO"
)

// Structure is one bracket, group or stage within a draw.
type Structure struct {
	StructureID           string                `json:"structureId"`
	StructureName         string                `json:"structureName"`
	StructureType         StructureType         `json:"structureType"`
	Stage                 Stage                 `json:"stage"`
	StageSequence         int                   `json:"stageSequence"`
	ExitProfile           string                `json:"exitProfile,omitempty"`
	StructureAbbreviation string                `json:"structureAbbreviation,omitempty"`
	FinishingPosition     FinishingPosition     `json:"finishingPosition"`
	RoundLimit            int                   `json:"roundLimit,omitempty"`
	MatchUpFormat         string                `json:"matchUpFormat,omitempty"`
	TieFormat             *TieFormat            `json:"tieFormat,omitempty"`
	MatchUps              []*MatchUp            `json:"matchUps,omitempty"`
	Structures            []*Structure          `json:"structures,omitempty"`
	PositionAssignments   []*PositionAssignment `json:"positionAssignments,omitempty"`
	SeedAssignments       []*SeedAssignment     `json:"seedAssignments,omitempty"`
	Extensions            []Extension           `json:"extensions,omitempty"`
}

// IsContainer reports whether the structure groups child structures.
func (s *Structure) IsContainer() bool {
	return s.StructureType == StructureTypeContainer
}

// Valid checks the leaf/container invariant: never both matchUps and children.
func (s *Structure) Valid() bool {
	if s.IsContainer() {
		return len(s.MatchUps) == 0
	}
	return len(s.Structures) == 0
}

// AllMatchUps returns the structure's matchUps, flattening container groups.
func (s *Structure) AllMatchUps() []*MatchUp {
	if !s.IsContainer() {
		return s.MatchUps
	}
	var out []*MatchUp
	for _, child := range s.Structures {
		out = append(out, child.AllMatchUps()...)
	}
	return out
}

// AllPositionAssignments returns assignments, flattening container groups.
func (s *Structure) AllPositionAssignments() []*PositionAssignment {
	if !s.IsContainer() {
		return s.PositionAssignments
	}
	var out []*PositionAssignment
	for _, child := range s.Structures {
		out = append(out, child.AllPositionAssignments()...)
	}
	return out
}

// PositionAssignment maps a draw position to a participant, bye or qualifier.
type PositionAssignment struct {
	DrawPosition  int         `json:"drawPosition"`
	ParticipantID string      `json:"participantId,omitempty"`
	Bye           bool        `json:"bye,omitempty"`
	Qualifier     bool        `json:"qualifier,omitempty"`
	SeedValue     int         `json:"seedValue,omitempty"`
	Extensions    []Extension `json:"extensions,omitempty"`
}

// Filled reports whether anything occupies the position.
func (pa *PositionAssignment) Filled() bool {
	return pa.ParticipantID != "" || pa.Bye
}

type SeedAssignment struct {
	SeedNumber    int    `json:"seedNumber"`
	SeedValue     int    `json:"seedValue"`
	ParticipantID string `json:"participantId,omitempty"`
}
