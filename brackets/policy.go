package brackets

import (
	"encoding/json"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/positions"
)

// FeedPolicy controls consolation feeding.
type FeedPolicy struct {
	// FeedMainFinal feeds the loser of the main final into consolation even
	// when drawSize <= 4.
	FeedMainFinal *bool `json:"feedMainFinal,omitempty"`
}

// SeedingPolicy controls how seeds and byes are positioned.
type SeedingPolicy struct {
	Positioning positions.Positioning `json:"positioning,omitempty"`
	// SeedsCount limits seeded entries; 0 seeds every entry carrying a
	// seedValue.
	SeedsCount int `json:"seedsCount,omitempty"`
}

// AvoidancePolicy keeps participants sharing an attribute apart in the
// first round.
type AvoidancePolicy struct {
	Attributes []string `json:"attributes,omitempty"`
}

// RoundNamingPolicy names rounds by matchUps count.
type RoundNamingPolicy struct {
	Names         map[int]string `json:"roundNames,omitempty"`
	Abbreviations map[int]string `json:"roundAbbreviations,omitempty"`
	// Affixes prefix round names per stage, e.g. "C" for consolation.
	Affixes map[string]string `json:"affixes,omitempty"`
}

// Policies is the merged, fully typed configuration of one draw.
type Policies struct {
	Feed        FeedPolicy        `json:"feed"`
	Seeding     SeedingPolicy     `json:"seeding"`
	Avoidance   AvoidancePolicy   `json:"avoidance"`
	RoundNaming RoundNamingPolicy `json:"roundNaming"`
}

// PolicySource is a partial configuration. Nil fields defer to later
// sources.
type PolicySource struct {
	Feed        *FeedPolicy        `json:"feed,omitempty"`
	Seeding     *SeedingPolicy     `json:"seeding,omitempty"`
	Avoidance   *AvoidancePolicy   `json:"avoidance,omitempty"`
	RoundNaming *RoundNamingPolicy `json:"roundNaming,omitempty"`
}

// DefaultPolicies is the last layer of every resolution.
func DefaultPolicies() Policies {
	return Policies{
		Seeding: SeedingPolicy{Positioning: positions.PositioningCluster},
		RoundNaming: RoundNamingPolicy{
			Names: map[int]string{
				1: "Final",
				2: "Semifinals",
				4: "Quarterfinals",
			},
			Abbreviations: map[int]string{
				1: "F",
				2: "SF",
				4: "QF",
			},
			Affixes: map[string]string{
				"CONSOLATION":           "C",
				"QUALIFYING":            "Q",
				"PLAY_OFF":              "P",
				"VOLUNTARY_CONSOLATION": "VC",
			},
		},
	}
}

// ResolvePolicies merges sources in precedence order: the first source that
// sets a field wins, defaults fill whatever remains. Callers pass explicit
// params first, then policies already applied to the draw.
func ResolvePolicies(sources ...PolicySource) Policies {
	out := DefaultPolicies()
	// walk backwards so earlier sources overwrite later ones
	for i := len(sources) - 1; i >= 0; i-- {
		src := sources[i]
		if src.Feed != nil && src.Feed.FeedMainFinal != nil {
			out.Feed.FeedMainFinal = src.Feed.FeedMainFinal
		}
		if src.Seeding != nil {
			if src.Seeding.Positioning != "" {
				out.Seeding.Positioning = src.Seeding.Positioning
			}
			if src.Seeding.SeedsCount != 0 {
				out.Seeding.SeedsCount = src.Seeding.SeedsCount
			}
		}
		if src.Avoidance != nil && src.Avoidance.Attributes != nil {
			out.Avoidance.Attributes = src.Avoidance.Attributes
		}
		if src.RoundNaming != nil {
			for k, v := range src.RoundNaming.Names {
				out.RoundNaming.Names[k] = v
			}
			for k, v := range src.RoundNaming.Abbreviations {
				out.RoundNaming.Abbreviations[k] = v
			}
			for k, v := range src.RoundNaming.Affixes {
				out.RoundNaming.Affixes[k] = v
			}
		}
	}
	return out
}

func (f *FeedPolicy) feedMainFinal() bool {
	return f != nil && f.FeedMainFinal != nil && *f.FeedMainFinal
}

// AppliedPoliciesExtension names the draw extension holding the policies a
// draw was generated with.
const AppliedPoliciesExtension = "appliedPolicies"

// AttachPolicies records src on the draw so later operations resolve the
// same configuration.
func AttachPolicies(dd *models.DrawDefinition, src PolicySource) error {
	if src == (PolicySource{}) {
		return nil
	}
	extensions, err := models.SetExtension(dd.Extensions, AppliedPoliciesExtension, src)
	if err != nil {
		return newError(ErrInvalidValues, err.Error())
	}
	dd.Extensions = extensions
	return nil
}

// AppliedPolicies returns the policies attached to the draw, if any.
func AppliedPolicies(dd *models.DrawDefinition) PolicySource {
	var src PolicySource
	ext, ok := models.FindExtension(dd.Extensions, AppliedPoliciesExtension)
	if !ok {
		return src
	}
	if err := json.Unmarshal(ext.Value, &src); err != nil {
		return PolicySource{}
	}
	return src
}

// DrawPolicies resolves the draw's attached policies over the defaults.
func DrawPolicies(dd *models.DrawDefinition) Policies {
	return ResolvePolicies(AppliedPolicies(dd))
}

// mergeSources keeps, per policy, the first source that sets it.
func mergeSources(sources ...PolicySource) PolicySource {
	var out PolicySource
	for _, src := range sources {
		if out.Feed == nil {
			out.Feed = src.Feed
		}
		if out.Seeding == nil {
			out.Seeding = src.Seeding
		}
		if out.Avoidance == nil {
			out.Avoidance = src.Avoidance
		}
		if out.RoundNaming == nil {
			out.RoundNaming = src.RoundNaming
		}
	}
	return out
}
