package positions

import "sort"

// Positioning selects how block members are chosen inside each chunk.
type Positioning string

const (
	// PositioningCluster takes the far end of a chunk from an already
	// selected member (classic seed lines 1, N, N/2+1, N/2...).
	PositioningCluster Positioning = "CLUSTER"
	// PositioningAdjacent takes the neighbour of an already selected member.
	PositioningAdjacent Positioning = "ADJACENT"
	// PositioningWaterfall uses cluster groupings in serpentine order.
	PositioningWaterfall Positioning = "WATERFALL"
)

// BlockPattern is the ordered partition of [1..size] into groupings; each
// grouping becomes available once all earlier groupings are used.
// Divisions[i] is the chunk size that produced Groupings[i].
type BlockPattern struct {
	Divisions []int   `json:"divisions"`
	Groupings [][]int `json:"divisionGroupings"`
}

// GenerateBlockPattern partitions [1..size]. The flattened groupings contain
// every position exactly once.
func GenerateBlockPattern(size int, positioning Positioning) BlockPattern {
	if size < 1 {
		return BlockPattern{Divisions: []int{}, Groupings: [][]int{}}
	}
	if positioning == "" {
		positioning = PositioningCluster
	}
	full := NextPowerOf2(size)
	selected := make(map[int]bool, full)
	pattern := BlockPattern{}

	add := func(division int, members []int) {
		var kept []int
		for _, m := range members {
			if m <= size {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return
		}
		sort.Ints(kept)
		pattern.Divisions = append(pattern.Divisions, division)
		pattern.Groupings = append(pattern.Groupings, kept)
	}

	first := []int{1}
	selected[1] = true
	if full > 1 {
		first = append(first, full)
		selected[full] = true
	}
	add(full, first)

	all := GenerateRange(1, full+1)
	for chunkSize := full / 4; chunkSize >= 1; chunkSize /= 2 {
		chunks := ChunkArray(all, chunkSize)

		// empty chunks take one member: top half from the top, bottom half from the bottom
		var fresh []int
		for _, chunk := range chunks {
			if anySelected(chunk, selected) {
				continue
			}
			pick := chunk[0]
			if chunk[0] > full/2 {
				pick = chunk[len(chunk)-1]
			}
			fresh = append(fresh, pick)
		}
		for _, p := range fresh {
			selected[p] = true
		}
		add(chunkSize, fresh)

		var paired []int
		for _, chunk := range chunks {
			for _, candidate := range companions(chunk, selected, positioning) {
				if !selected[candidate] {
					selected[candidate] = true
					paired = append(paired, candidate)
					break
				}
			}
		}
		add(chunkSize, paired)
	}

	var rest []int
	for _, p := range all {
		if !selected[p] {
			rest = append(rest, p)
		}
	}
	add(1, rest)

	if positioning == PositioningWaterfall {
		for i := range pattern.Groupings {
			if i%2 == 1 {
				sort.Sort(sort.Reverse(sort.IntSlice(pattern.Groupings[i])))
			}
		}
	}
	return pattern
}

func anySelected(chunk []int, selected map[int]bool) bool {
	for _, p := range chunk {
		if selected[p] {
			return true
		}
	}
	return false
}

// companions lists the candidate positions paired with the selected members
// of chunk, per positioning.
func companions(chunk []int, selected map[int]bool, positioning Positioning) []int {
	lo, hi := chunk[0], chunk[len(chunk)-1]
	mid := (lo + hi) / 2
	var out []int
	for _, p := range chunk {
		if !selected[p] {
			continue
		}
		var candidate int
		switch positioning {
		case PositioningAdjacent:
			if p <= mid {
				candidate = p + 1
			} else {
				candidate = p - 1
			}
		default:
			candidate = lo + hi - p
		}
		if candidate >= lo && candidate <= hi {
			out = append(out, candidate)
		}
	}
	return out
}

// SeedBlocks returns the draw positions available to each block of seeds:
// seed 1, seed 2, seeds 3-4, seeds 5-8 and so on, enough to cover seedsCount.
func SeedBlocks(drawSize, seedsCount int, positioning Positioning) [][]int {
	if seedsCount <= 0 || drawSize < 2 {
		return [][]int{}
	}
	pattern := GenerateBlockPattern(drawSize, positioning)
	var blocks [][]int
	covered := 0
	for i, grouping := range pattern.Groupings {
		if covered >= seedsCount {
			break
		}
		if i == 0 {
			for _, p := range grouping {
				blocks = append(blocks, []int{p})
				covered++
				if covered >= seedsCount {
					break
				}
			}
			continue
		}
		blocks = append(blocks, grouping)
		covered += len(grouping)
	}
	return blocks
}

// SeedPositions flattens SeedBlocks into one draw position per seed number.
func SeedPositions(drawSize, seedsCount int, positioning Positioning) []int {
	var out []int
	for _, block := range SeedBlocks(drawSize, seedsCount, positioning) {
		for _, p := range block {
			if len(out) == seedsCount {
				return out
			}
			out = append(out, p)
		}
	}
	return out
}

// SeedOrder flattens the block pattern into the order draw positions are
// handed out: seed 1's position first, the last unseeded position last.
func SeedOrder(drawSize int, positioning Positioning) []int {
	var order []int
	for _, grouping := range GenerateBlockPattern(drawSize, positioning).Groupings {
		order = append(order, grouping...)
	}
	return order
}

// ByePositions places byesCount byes opposite the seed order, so the best
// seeded positions receive byes first. Once every first round pairing holds
// a bye, the remaining byes fill positions from the end of the seed order.
func ByePositions(drawSize, byesCount int, positioning Positioning) []int {
	if byesCount <= 0 || drawSize < 2 {
		return []int{}
	}
	if byesCount > drawSize {
		byesCount = drawSize
	}
	order := SeedOrder(drawSize, positioning)
	taken := make(map[int]bool, byesCount)
	out := make([]int, 0, byesCount)
	for _, p := range order {
		if len(out) == byesCount {
			break
		}
		partner := PairedDrawPosition(p, 0)
		if partner > drawSize || taken[p] || taken[partner] {
			continue
		}
		taken[partner] = true
		out = append(out, partner)
	}
	for i := len(order) - 1; i >= 0 && len(out) < byesCount; i-- {
		if !taken[order[i]] {
			taken[order[i]] = true
			out = append(out, order[i])
		}
	}
	return out
}

// EntryPositions splits a draw of drawSize for entriesCount participants:
// entries holds the positions in seed order, byes the rest.
func EntryPositions(drawSize, entriesCount int, positioning Positioning) (entries, byes []int) {
	byes = ByePositions(drawSize, drawSize-entriesCount, positioning)
	isBye := make(map[int]bool, len(byes))
	for _, p := range byes {
		isBye[p] = true
	}
	for _, p := range SeedOrder(drawSize, positioning) {
		if !isBye[p] && len(entries) < entriesCount {
			entries = append(entries, p)
		}
	}
	return entries, byes
}
