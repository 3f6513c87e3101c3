package brackets

import (
	"sort"
	"strconv"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// HierarchyNode is a matchUp (or, at the leaves, a draw position) in a
// reconstructed elimination tree.
type HierarchyNode struct {
	MatchUpID     string               `json:"matchUpId,omitempty"`
	RoundNumber   int                  `json:"roundNumber,omitempty"`
	RoundPosition int                  `json:"roundPosition,omitempty"`
	MatchUpStatus models.MatchUpStatus `json:"matchUpStatus,omitempty"`
	WinningSide   int                  `json:"winningSide,omitempty"`
	Sides         []models.Side        `json:"sides,omitempty"`
	DrawPosition  int                  `json:"drawPosition,omitempty"`
	ParticipantID string               `json:"participantId,omitempty"`
	Bye           bool                 `json:"bye,omitempty"`
	Children      []*HierarchyNode     `json:"children,omitempty"`
	Hidden        []*HierarchyNode     `json:"_children,omitempty"`
}

// IsLeaf reports whether the node is a draw position rather than a matchUp.
func (n *HierarchyNode) IsLeaf() bool { return n.MatchUpID == "" }

// Leaves returns the draw position nodes under n, hidden children included.
func (n *HierarchyNode) Leaves() []*HierarchyNode {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []*HierarchyNode{n}
	}
	var out []*HierarchyNode
	for _, child := range n.allChildren() {
		out = append(out, child.Leaves()...)
	}
	return out
}

// Depth counts matchUp levels from n down to the deepest leaf.
func (n *HierarchyNode) Depth() int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	deepest := 0
	for _, child := range n.allChildren() {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func (n *HierarchyNode) allChildren() []*HierarchyNode {
	if n.Children != nil {
		return n.Children
	}
	return n.Hidden
}

// HierarchyResult is the reconstructed tree with bookkeeping. MissingMatchUps
// lists the BYE and placeholder matchUps synthesized to complete the tree.
type HierarchyResult struct {
	Hierarchy       *HierarchyNode    `json:"hierarchy,omitempty"`
	MissingMatchUps []*models.MatchUp `json:"missingMatchUps,omitempty"`
	MaxRound        int               `json:"maxRound,omitempty"`
	FinalRound      int               `json:"finalRound,omitempty"`
	MatchUps        []*models.MatchUp `json:"matchUps,omitempty"`
}

var matchUpTypePriority = []models.MatchUpType{models.MatchUpTypeTeam, models.MatchUpTypeSingles, models.MatchUpTypeDoubles}

// BuildDrawHierarchy reconstructs an elimination tree from flat matchUps,
// which may come from outside and skip rounds or byes. Input matchUps are
// not modified. An empty result (no error) means nothing usable was given.
func BuildDrawHierarchy(matchUps []*models.MatchUp, matchUpType models.MatchUpType) (*HierarchyResult, error) {
	if matchUps == nil {
		return nil, newError(ErrMissingMatchUps, "")
	}
	selected := filterMatchUpType(matchUps, matchUpType)
	if len(selected) == 0 || !validMatchUps(selected) {
		return &HierarchyResult{}, nil
	}

	working := make([]*models.MatchUp, len(selected))
	for i, m := range selected {
		working[i] = m.Clone()
	}
	result := &HierarchyResult{}
	rm := GetRoundMatchUps(working)
	result.MaxRound = rm.MaxRound

	byes := synthesizeByes(rm)
	if len(byes) > 0 {
		working = append(working, byes...)
		result.MissingMatchUps = append(result.MissingMatchUps, byes...)
		rm = GetRoundMatchUps(working)
	}

	placeholders := synthesizeRounds(rm)
	if len(placeholders) > 0 {
		working = append(working, placeholders...)
		result.MissingMatchUps = append(result.MissingMatchUps, placeholders...)
		rm = GetRoundMatchUps(working)
	}
	result.FinalRound = rm.MaxRound
	result.MatchUps = working

	var previous []*HierarchyNode
	for _, round := range rm.RoundNumbers {
		list := rm.RoundMatchUps[round]
		nodes := make([]*HierarchyNode, len(list))
		profile := rm.RoundProfile[round]
		for i, m := range list {
			node := matchUpNode(m)
			switch {
			case previous == nil:
				node.Children = sideLeaves(m)
			case profile.FeedRound && len(previous) == len(list):
				node.Children = []*HierarchyNode{fedLeaf(rm, m), previous[i]}
			}
			nodes[i] = node
		}
		if previous != nil && len(previous) == 2*len(list) {
			attachPairs(nodes, list, previous)
		}
		if previous != nil && len(previous) != len(list) && len(previous) != 2*len(list) {
			// irregular rounds: attach each previous node proportionally
			for j, child := range previous {
				parent := ceilDiv((j+1)*len(list), len(previous)) - 1
				nodes[parent].Children = append(nodes[parent].Children, child)
			}
		}
		previous = nodes
	}
	if len(previous) == 1 {
		result.Hierarchy = previous[0]
	} else if len(previous) > 1 {
		result.Hierarchy = &HierarchyNode{MatchUpID: "root", RoundNumber: result.FinalRound + 1, Children: previous}
	}
	return result, nil
}

// attachPairs gives each matchUp the previous nodes whose leaves hold its
// draw positions. Nodes that match nothing fill the open slots in order, so
// roundPosition is not trusted for external input.
func attachPairs(nodes []*HierarchyNode, list []*models.MatchUp, previous []*HierarchyNode) {
	owner := make(map[int]int)
	for i, m := range list {
		for _, dp := range m.DrawPositions {
			if dp != 0 {
				owner[dp] = i
			}
		}
	}
	var unmatched []*HierarchyNode
	for _, child := range previous {
		parent := -1
		for _, leaf := range child.Leaves() {
			if i, ok := owner[leaf.DrawPosition]; ok && leaf.DrawPosition != 0 && len(nodes[i].Children) < 2 {
				parent = i
				break
			}
		}
		if parent < 0 {
			unmatched = append(unmatched, child)
			continue
		}
		nodes[parent].Children = append(nodes[parent].Children, child)
	}
	for _, node := range nodes {
		for len(node.Children) < 2 && len(unmatched) > 0 {
			node.Children = append(node.Children, unmatched[0])
			unmatched = unmatched[1:]
		}
		sort.SliceStable(node.Children, func(a, b int) bool {
			return lowestPosition(node.Children[a]) < lowestPosition(node.Children[b])
		})
	}
}

func lowestPosition(node *HierarchyNode) int {
	lowest := 0
	for _, leaf := range node.Leaves() {
		if leaf.DrawPosition != 0 && (lowest == 0 || leaf.DrawPosition < lowest) {
			lowest = leaf.DrawPosition
		}
	}
	if lowest == 0 {
		return int(^uint(0) >> 1)
	}
	return lowest
}

func filterMatchUpType(matchUps []*models.MatchUp, matchUpType models.MatchUpType) []*models.MatchUp {
	if matchUpType == "" {
		present := make(map[models.MatchUpType]bool)
		for _, m := range matchUps {
			if m != nil && m.MatchUpType != "" {
				present[m.MatchUpType] = true
			}
		}
		for _, t := range matchUpTypePriority {
			if present[t] {
				matchUpType = t
				break
			}
		}
	}
	var out []*models.MatchUp
	for _, m := range matchUps {
		if m == nil || m.CollectionID != "" {
			continue
		}
		if matchUpType == "" || m.MatchUpType == "" || m.MatchUpType == matchUpType {
			out = append(out, m)
		}
	}
	return out
}

func validMatchUps(matchUps []*models.MatchUp) bool {
	for _, m := range matchUps {
		if m.MatchUpID == "" || m.RoundNumber < 1 || len(m.DrawPositions) > 2 {
			return false
		}
	}
	return true
}

// synthesizeByes pairs draw positions missing from round 1 with the
// positions that first appear in round 2, when the counts match.
func synthesizeByes(rm *RoundMatchUps) []*models.MatchUp {
	observed := make(map[int]bool)
	maxPosition := 0
	for _, round := range rm.RoundNumbers {
		for _, dp := range rm.RoundProfile[round].DrawPositions {
			observed[dp] = true
			if dp > maxPosition {
				maxPosition = dp
			}
		}
	}
	var missing []int
	for dp := 1; dp <= maxPosition; dp++ {
		if !observed[dp] {
			missing = append(missing, dp)
		}
	}
	first, ok := rm.RoundProfile[1]
	second, ok2 := rm.RoundProfile[2]
	if !ok || !ok2 || len(missing) == 0 {
		return nil
	}
	inFirst := make(map[int]bool)
	for _, dp := range first.DrawPositions {
		inFirst[dp] = true
	}
	var entries []int
	for _, dp := range second.DrawPositions {
		if !inFirst[dp] {
			entries = append(entries, dp)
		}
	}
	if len(entries) != len(missing) {
		return nil
	}
	sort.Ints(entries)

	isMissing := make(map[int]bool, len(missing))
	for _, dp := range missing {
		isMissing[dp] = true
	}
	used := make(map[int]bool)
	var byes []*models.MatchUp
	for i, entry := range entries {
		partner := positions.PairedDrawPosition(entry, 0)
		if !isMissing[partner] || used[partner] {
			partner = missing[i]
		}
		used[partner] = true
		pair := []int{entry, partner}
		sort.Ints(pair)
		m := &models.MatchUp{
			MatchUpID:     "bye-" + strconv.Itoa(pair[0]) + "-" + strconv.Itoa(pair[1]),
			RoundNumber:   1,
			RoundPosition: pair[1] / 2,
			DrawPositions: pair,
			MatchUpStatus: models.MatchUpStatusBye,
		}
		for idx, dp := range pair {
			side := models.Side{SideNumber: idx + 1, DrawPosition: dp, Bye: dp == partner}
			if dp == entry {
				side.ParticipantID = participantAt(rm.RoundMatchUps[2], dp)
			}
			m.Sides = append(m.Sides, side)
		}
		byes = append(byes, m)
	}
	return byes
}

func participantAt(matchUps []*models.MatchUp, drawPosition int) string {
	for _, m := range matchUps {
		for _, side := range m.Sides {
			if side.DrawPosition == drawPosition {
				return side.ParticipantID
			}
		}
	}
	return ""
}

// synthesizeRounds adds placeholder rounds until the deepest round holds a
// single matchUp.
func synthesizeRounds(rm *RoundMatchUps) []*models.MatchUp {
	if rm.MaxRound == 0 {
		return nil
	}
	count := len(rm.RoundMatchUps[rm.MaxRound])
	additional := positions.Log2(count)
	var out []*models.MatchUp
	for i := 1; i <= additional; i++ {
		round := rm.MaxRound + i
		count = (count + 1) / 2
		for rp := 1; rp <= count; rp++ {
			out = append(out, &models.MatchUp{
				MatchUpID:     "placeholder-" + strconv.Itoa(round) + "-" + strconv.Itoa(rp),
				RoundNumber:   round,
				RoundPosition: rp,
				DrawPositions: []int{0, 0},
				MatchUpStatus: models.MatchUpStatusToBePlayed,
			})
		}
	}
	return out
}

func matchUpNode(m *models.MatchUp) *HierarchyNode {
	return &HierarchyNode{
		MatchUpID:     m.MatchUpID,
		RoundNumber:   m.RoundNumber,
		RoundPosition: m.RoundPosition,
		MatchUpStatus: m.MatchUpStatus,
		WinningSide:   m.WinningSide,
		Sides:         append([]models.Side(nil), m.Sides...),
	}
}

func leafFor(m *models.MatchUp, drawPosition int) *HierarchyNode {
	leaf := &HierarchyNode{DrawPosition: drawPosition}
	for _, side := range m.Sides {
		if side.DrawPosition == drawPosition && drawPosition != 0 {
			leaf.ParticipantID, leaf.Bye = side.ParticipantID, side.Bye
		}
	}
	return leaf
}

func sideLeaves(m *models.MatchUp) []*HierarchyNode {
	var ordered [2]int
	copy(ordered[:], m.DrawPositions)
	if len(m.DrawPositions) == 0 {
		for i, side := range m.Sides {
			if i < 2 {
				ordered[i] = side.DrawPosition
			}
		}
	}
	leaves := []*HierarchyNode{leafFor(m, ordered[0]), leafFor(m, ordered[1])}
	if len(m.DrawPositions) == 0 {
		for i, side := range m.Sides {
			if i < 2 {
				leaves[i].ParticipantID = side.ParticipantID
			}
		}
	}
	return leaves
}

// fedLeaf is the side of a feed round matchUp whose position did not advance
// from the previous round.
func fedLeaf(rm *RoundMatchUps, m *models.MatchUp) *HierarchyNode {
	previous := make(map[int]bool)
	for _, prev := range rm.RoundMatchUps[m.RoundNumber-1] {
		for _, dp := range prev.DrawPositions {
			previous[dp] = true
		}
	}
	for _, dp := range m.DrawPositions {
		if dp != 0 && !previous[dp] {
			return leafFor(m, dp)
		}
	}
	ordered := rm.GetOrderedDrawPositions(m)
	return leafFor(m, ordered[0])
}

// CollapseHierarchy prepares a tree for lazy expansion: nodes above depth
// get their hidden children back, nodes at or below depth hide theirs.
// The root is at depth 0.
func CollapseHierarchy(node *HierarchyNode, depth int) {
	collapse(node, depth, 0)
}

func collapse(node *HierarchyNode, depth, level int) {
	if node == nil {
		return
	}
	if level < depth {
		if node.Children == nil && node.Hidden != nil {
			node.Children, node.Hidden = node.Hidden, nil
		}
		for _, child := range node.Children {
			collapse(child, depth, level+1)
		}
		return
	}
	if node.Children != nil {
		node.Hidden, node.Children = node.Children, nil
	}
	for _, child := range node.Hidden {
		collapse(child, depth, level+1)
	}
}
