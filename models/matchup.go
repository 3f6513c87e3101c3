package models

type MatchUpStatus string

const (
	MatchUpStatusToBePlayed     MatchUpStatus = "TO_BE_PLAYED"
	MatchUpStatusInProgress     MatchUpStatus = "IN_PROGRESS"
	MatchUpStatusCompleted      MatchUpStatus = "COMPLETED"
	MatchUpStatusBye            MatchUpStatus = "BYE"
	MatchUpStatusWalkover       MatchUpStatus = "WALKOVER"
	MatchUpStatusRetired        MatchUpStatus = "RETIRED"
	MatchUpStatusDefaulted      MatchUpStatus = "DEFAULTED"
	MatchUpStatusDoubleWalkover MatchUpStatus = "DOUBLE_WALKOVER"
	MatchUpStatusAbandoned      MatchUpStatus = "ABANDONED"
	MatchUpStatusCancelled      MatchUpStatus = "CANCELLED"
)

// Decisive reports whether the status requires a winning side.
func (s MatchUpStatus) Decisive() bool {
	switch s {
	case MatchUpStatusCompleted, MatchUpStatusWalkover, MatchUpStatusRetired, MatchUpStatusDefaulted:
		return true
	}
	return false
}

// MatchUp is one contest. DrawPositions holds two slots for generated
// matchUps (0 marks an unfilled slot); slot 0 is side 1, slot 1 is side 2.
type MatchUp struct {
	MatchUpID              string                  `json:"matchUpId"`
	MatchUpType            MatchUpType             `json:"matchUpType,omitempty"`
	RoundNumber            int                     `json:"roundNumber,omitempty"`
	RoundPosition          int                     `json:"roundPosition,omitempty"`
	DrawPositions          []int                   `json:"drawPositions,omitempty"`
	Sides                  []Side                  `json:"sides,omitempty"`
	MatchUpStatus          MatchUpStatus           `json:"matchUpStatus,omitempty"`
	WinningSide            int                     `json:"winningSide,omitempty"`
	Score                  *Score                  `json:"score,omitempty"`
	MatchUpFormat          string                  `json:"matchUpFormat,omitempty"`
	FinishingRound         int                     `json:"finishingRound,omitempty"`
	FinishingPositionRange *FinishingPositionRange `json:"finishingPositionRange,omitempty"`
	TieMatchUps            []*MatchUp              `json:"tieMatchUps,omitempty"`
	CollectionID           string                  `json:"collectionId,omitempty"`
	CollectionPosition     int                     `json:"collectionPosition,omitempty"`
	WinnerMatchUpID        string                  `json:"winnerMatchUpId,omitempty"`
	LoserMatchUpID         string                  `json:"loserMatchUpId,omitempty"`
	Schedule               *Schedule               `json:"schedule,omitempty"`
	Extensions             []Extension             `json:"extensions,omitempty"`
}

// Side is one half of a matchUp.
type Side struct {
	SideNumber    int    `json:"sideNumber"`
	DrawPosition  int    `json:"drawPosition,omitempty"`
	ParticipantID string `json:"participantId,omitempty"`
	Bye           bool   `json:"bye,omitempty"`
	Qualifier     bool   `json:"qualifier,omitempty"`
}

type Score struct {
	ScoreStringSide1 string     `json:"scoreStringSide1,omitempty"`
	ScoreStringSide2 string     `json:"scoreStringSide2,omitempty"`
	Sets             []SetScore `json:"sets,omitempty"`
}

type SetScore struct {
	SetNumber          int `json:"setNumber"`
	Side1Score         int `json:"side1Score"`
	Side2Score         int `json:"side2Score"`
	Side1TiebreakScore int `json:"side1TiebreakScore,omitempty"`
	Side2TiebreakScore int `json:"side2TiebreakScore,omitempty"`
	WinningSide        int `json:"winningSide,omitempty"`
}

type FinishingPositionRange struct {
	Winner []int `json:"winner"`
	Loser  []int `json:"loser"`
}

type Schedule struct {
	ScheduledDate string `json:"scheduledDate,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
	VenueID       string `json:"venueId,omitempty"`
	CourtID       string `json:"courtId,omitempty"`
}

// HasResult reports whether an outcome has been recorded, byes excluded.
func (m *MatchUp) HasResult() bool {
	if m.MatchUpStatus == MatchUpStatusBye {
		return false
	}
	return m.WinningSide != 0 || m.Score != nil || m.MatchUpStatus.Decisive() ||
		m.MatchUpStatus == MatchUpStatusInProgress
}

// Side returns the side with the given number, or nil.
func (m *MatchUp) Side(sideNumber int) *Side {
	for i := range m.Sides {
		if m.Sides[i].SideNumber == sideNumber {
			return &m.Sides[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the matchUp.
func (m *MatchUp) Clone() *MatchUp {
	if m == nil {
		return nil
	}
	c := *m
	c.DrawPositions = append([]int(nil), m.DrawPositions...)
	c.Sides = append([]Side(nil), m.Sides...)
	if m.Score != nil {
		score := *m.Score
		score.Sets = append([]SetScore(nil), m.Score.Sets...)
		c.Score = &score
	}
	if m.FinishingPositionRange != nil {
		fpr := FinishingPositionRange{
			Winner: append([]int(nil), m.FinishingPositionRange.Winner...),
			Loser:  append([]int(nil), m.FinishingPositionRange.Loser...),
		}
		c.FinishingPositionRange = &fpr
	}
	if m.Schedule != nil {
		schedule := *m.Schedule
		c.Schedule = &schedule
	}
	if m.TieMatchUps != nil {
		c.TieMatchUps = make([]*MatchUp, len(m.TieMatchUps))
		for i, tie := range m.TieMatchUps {
			c.TieMatchUps[i] = tie.Clone()
		}
	}
	c.Extensions = append([]Extension(nil), m.Extensions...)
	return &c
}
