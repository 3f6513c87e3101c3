package models

type LinkType string

const (
	LinkTypeWinner   LinkType = "WINNER"
	LinkTypeLoser    LinkType = "LOSER"
	LinkTypePosition LinkType = "POSITION"
)

// FeedProfile orders how source participants land in the target round.
type FeedProfile string

const (
	FeedProfileTopDown  FeedProfile = "TOP_DOWN"
	FeedProfileBottomUp FeedProfile = "BOTTOM_UP"
	FeedProfileRandom   FeedProfile = "RANDOM"
	FeedProfileDraw     FeedProfile = "DRAW"
)

// LinkConditionFirstMatchUp restricts a loser link to participants losing
// their first played matchUp.
const LinkConditionFirstMatchUp = "FIRST_MATCHUP"

// DrawLink is a directed advancement rule between two structures.
type DrawLink struct {
	LinkType      LinkType   `json:"linkType"`
	LinkCondition string     `json:"linkCondition,omitempty"`
	Source        LinkSource `json:"source"`
	Target        LinkTarget `json:"target"`
}

type LinkSource struct {
	StructureID        string `json:"structureId"`
	RoundNumber        int    `json:"roundNumber,omitempty"`
	FinishingPositions []int  `json:"finishingPositions,omitempty"`
}

type LinkTarget struct {
	StructureID        string              `json:"structureId"`
	RoundNumber        int                 `json:"roundNumber"`
	FeedProfile        FeedProfile         `json:"feedProfile"`
	PositionInterleave *PositionInterleave `json:"positionInterleave,omitempty"`
	DrawPositions      []int               `json:"drawPositions,omitempty"`
}

// PositionInterleave spreads several sources feeding one target round.
type PositionInterleave struct {
	Offset     int `json:"offset"`
	Interleave int `json:"interleave"`
}
