package brackets

import (
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

// RoundProfile is derived per round from a structure's current matchUps. It
// is never stored.
type RoundProfile struct {
	RoundNumber         int      `json:"roundNumber"`
	MatchUpsCount       int      `json:"matchUpsCount"`
	DrawPositions       []int    `json:"drawPositions"`
	PairedDrawPositions [][2]int `json:"pairedDrawPositions"`
	FeedRound           bool     `json:"feedRound,omitempty"`
	PreFeedRound        bool     `json:"preFeedRound,omitempty"`
	FinishingRound      int      `json:"finishingRound"`
}

// RoundMatchUps groups matchUps by roundNumber, each round sorted by
// roundPosition.
type RoundMatchUps struct {
	RoundNumbers  []int                     `json:"roundNumbers"`
	RoundMatchUps map[int][]*models.MatchUp `json:"roundMatchUps"`
	RoundProfile  map[int]*RoundProfile     `json:"roundProfile"`
	MaxRound      int                       `json:"maxRound"`
}

// GetRoundMatchUps builds the per-round grouping and profile. A round is a
// feed round when it holds as many matchUps as the round before it.
func GetRoundMatchUps(matchUps []*models.MatchUp) *RoundMatchUps {
	rm := &RoundMatchUps{
		RoundMatchUps: make(map[int][]*models.MatchUp),
		RoundProfile:  make(map[int]*RoundProfile),
	}
	for _, m := range matchUps {
		if m == nil || m.RoundNumber < 1 {
			continue
		}
		rm.RoundMatchUps[m.RoundNumber] = append(rm.RoundMatchUps[m.RoundNumber], m)
	}
	for round, list := range rm.RoundMatchUps {
		sort.SliceStable(list, func(i, j int) bool { return list[i].RoundPosition < list[j].RoundPosition })
		rm.RoundNumbers = append(rm.RoundNumbers, round)
		if round > rm.MaxRound {
			rm.MaxRound = round
		}
	}
	sort.Ints(rm.RoundNumbers)

	for i, round := range rm.RoundNumbers {
		list := rm.RoundMatchUps[round]
		profile := &RoundProfile{
			RoundNumber:    round,
			MatchUpsCount:  len(list),
			FinishingRound: rm.MaxRound + 1 - round,
		}
		if i > 0 {
			prev := rm.RoundProfile[rm.RoundNumbers[i-1]]
			if prev.RoundNumber == round-1 && prev.MatchUpsCount == profile.MatchUpsCount {
				profile.FeedRound = true
				prev.PreFeedRound = true
			}
		}
		rm.RoundProfile[round] = profile
	}

	for _, round := range rm.RoundNumbers {
		profile := rm.RoundProfile[round]
		for _, m := range rm.RoundMatchUps[round] {
			ordered := rm.GetOrderedDrawPositions(m)
			profile.PairedDrawPositions = append(profile.PairedDrawPositions, ordered)
			for _, dp := range ordered {
				if dp != 0 {
					profile.DrawPositions = append(profile.DrawPositions, dp)
				}
			}
		}
	}
	return rm
}

// GetOrderedDrawPositions returns the matchUp's draw positions as
// [side1, side2]. In a feed round the fed position is side 1 and the advanced
// position side 2; in later standard rounds the position coming from the
// lower source roundPosition is side 1; otherwise numeric positions ascend.
// Zero marks an unfilled side.
func (rm *RoundMatchUps) GetOrderedDrawPositions(m *models.MatchUp) [2]int {
	var out [2]int
	copy(out[:], m.DrawPositions)
	if out[0] == 0 || out[1] == 0 {
		return out
	}
	ascending := out
	if ascending[0] > ascending[1] {
		ascending[0], ascending[1] = ascending[1], ascending[0]
	}
	prevRound := m.RoundNumber - 1
	prevMatchUps, ok := rm.RoundMatchUps[prevRound]
	if m.RoundNumber <= 1 || !ok {
		return ascending
	}

	sourceRoundPosition := func(dp int) int {
		for _, prev := range prevMatchUps {
			for _, p := range prev.DrawPositions {
				if p == dp {
					return prev.RoundPosition
				}
			}
		}
		return 0
	}
	rp0, rp1 := sourceRoundPosition(out[0]), sourceRoundPosition(out[1])

	if profile, ok := rm.RoundProfile[m.RoundNumber]; ok && profile.FeedRound {
		switch {
		case rp0 == 0 && rp1 != 0:
			return [2]int{out[0], out[1]}
		case rp1 == 0 && rp0 != 0:
			return [2]int{out[1], out[0]}
		}
		return ascending
	}
	if rp0 != 0 && rp1 != 0 && rp0 != rp1 {
		if rp0 < rp1 {
			return [2]int{out[0], out[1]}
		}
		return [2]int{out[1], out[0]}
	}
	return ascending
}

// RoundProfileFor returns the profile of the structure's matchUps.
func RoundProfileFor(structure *models.Structure) *RoundMatchUps {
	return GetRoundMatchUps(structure.MatchUps)
}
