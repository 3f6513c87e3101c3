package models

import "time"

type ParticipantType string

const (
	ParticipantTypeIndividual ParticipantType = "INDIVIDUAL"
	ParticipantTypePair       ParticipantType = "PAIR"
	ParticipantTypeTeam       ParticipantType = "TEAM"
)

// Participant is read from the tournament record; the draw engine never
// mutates it.
type Participant struct {
	ParticipantID            string          `json:"participantId"`
	ParticipantName          string          `json:"participantName"`
	ParticipantType          ParticipantType `json:"participantType"`
	TournamentID             string          `json:"tournamentId,omitempty"`
	Nationality              string          `json:"nationality,omitempty"`
	ClubCode                 string          `json:"clubCode,omitempty"`
	IndividualParticipantIDs []string        `json:"individualParticipantIds,omitempty"`
	CreatedAt                time.Time       `json:"createdAt"`
}

// Attribute returns the value used by avoidance policies.
func (p *Participant) Attribute(name string) string {
	switch name {
	case "nationality":
		return p.Nationality
	case "clubCode":
		return p.ClubCode
	}
	return ""
}
