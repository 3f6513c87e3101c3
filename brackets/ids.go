package brackets

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator hands out ids for structures and matchUps. Caller supplied
// uuids are consumed first, then ids derived from Prefix, then random UUIDs.
type IDGenerator struct {
	uuids  []string
	prefix string
}

// NewIDGenerator copies uuids so the caller's slice is never consumed.
func NewIDGenerator(uuids []string, prefix string) *IDGenerator {
	return &IDGenerator{uuids: append([]string(nil), uuids...), prefix: prefix}
}

// Next returns the next id. parts describe the record (scope, round,
// position) and are only used for prefix-derived ids.
func (g *IDGenerator) Next(parts ...interface{}) string {
	if g == nil {
		return uuid.NewString()
	}
	if len(g.uuids) > 0 {
		id := g.uuids[0]
		g.uuids = g.uuids[1:]
		return id
	}
	if g.prefix == "" {
		return uuid.NewString()
	}
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, g.prefix)
	for _, p := range parts {
		segments = append(segments, fmt.Sprint(p))
	}
	return strings.Join(segments, "-")
}

// Deterministic reports whether ids are reproducible across runs.
func (g *IDGenerator) Deterministic() bool {
	return g != nil && (g.prefix != "" || len(g.uuids) > 0)
}
