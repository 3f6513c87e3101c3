// Package positions holds the draw-position arithmetic shared by every draw
// generator: ranges, chunking, power-of-two helpers, block patterns used for
// seed and bye placement, and round-position pairing.
package positions

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"
)

// GenerateRange returns [start, end).
func GenerateRange(start, end int) []int {
	if end <= start {
		return []int{}
	}
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

// ChunkArray splits values into consecutive chunks of size chunkSize; the
// last chunk may be short.
func ChunkArray(values []int, chunkSize int) [][]int {
	if chunkSize <= 0 {
		return [][]int{}
	}
	chunks := make([][]int, 0, (len(values)+chunkSize-1)/chunkSize)
	for i := 0; i < len(values); i += chunkSize {
		end := i + chunkSize
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, append([]int(nil), values[i:end]...))
	}
	return chunks
}

// ChunkBySizes splits values into consecutive chunks of the given sizes.
// Values left over after the sizes are exhausted form a final chunk.
func ChunkBySizes(values []int, sizes []int) [][]int {
	var chunks [][]int
	i := 0
	for _, size := range sizes {
		if i >= len(values) {
			break
		}
		end := i + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, append([]int(nil), values[i:end]...))
		i = end
	}
	if i < len(values) {
		chunks = append(chunks, append([]int(nil), values[i:]...))
	}
	return chunks
}

func IsPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOf2 returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// PreviousPowerOf2 returns the largest power of two <= n (0 for n < 1).
func PreviousPowerOf2(n int) int {
	if n < 1 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}

// Log2 returns ceil(log2(n)) for n >= 1.
func Log2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// RangeString renders sorted positions as "3-4" or a single "5".
func RangeString(values []int) string {
	if len(values) == 0 {
		return ""
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]
	if first == last {
		return strconv.Itoa(first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

// ParseRangeString expands "5-8" to [5 6 7 8]; a bare number yields itself.
func ParseRangeString(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty range")
	}
	parts := strings.SplitN(s, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	end := start
	if len(parts) == 2 {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q: %w", parts[1], err)
		}
	}
	if end < start {
		return nil, fmt.Errorf("range %q is descending", s)
	}
	return GenerateRange(start, end+1), nil
}

// DrawPositionRanges maps each round of an elimination tree to the blocks of
// draw positions covered by the round's matchUps, in roundPosition order.
func DrawPositionRanges(drawSize int) map[int][][]int {
	ranges := make(map[int][][]int)
	if !IsPowerOf2(drawSize) || drawSize < 2 {
		return ranges
	}
	all := GenerateRange(1, drawSize+1)
	for round, chunk := 1, 2; chunk <= drawSize; round, chunk = round+1, chunk*2 {
		ranges[round] = ChunkArray(all, chunk)
	}
	return ranges
}

// PairedRoundPositions returns, for a target roundPosition, the two source
// roundPositions in the preceding (halving) round.
func PairedRoundPositions(roundPosition int) [2]int {
	return [2]int{2*roundPosition - 1, 2 * roundPosition}
}

// PairedDrawPosition returns the opponent position in a first round pairing
// that starts at offset+1.
func PairedDrawPosition(drawPosition, offset int) int {
	if (drawPosition-offset)%2 == 1 {
		return drawPosition + 1
	}
	return drawPosition - 1
}

// Intersection returns values of a present in b, preserving a's order.
func Intersection(a, b []int) []int {
	set := make(map[int]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []int
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Unique returns values without duplicates, preserving first occurrence.
func Unique(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
