package policies

import (
	"math"
	"strings"

	"quartz-skins/internal/types"
)

type aspectCandidate struct {
	ratio  types.AspectRatio
	weight float64
}

var aspectCandidates = []aspectCandidate{
	{ratio: types.Aspect4x3, weight: 4.0 / 3.0},
	{ratio: types.Aspect16x10, weight: 16.0 / 10.0},
	{ratio: types.Aspect16x9, weight: 16.0 / 9.0},
	{ratio: types.Aspect21x9, weight: 21.0 / 9.0},
}

// AspectPolicy classifies viewports into aspect-ratio classes and decides
// whether an `aspect` gated rule applies.
type AspectPolicy struct {
	// Fallback is used for degenerate viewport sizes.
	Fallback types.AspectRatio
}

func NewAspectPolicy() AspectPolicy {
	return AspectPolicy{Fallback: types.Aspect16x9}
}

// Classify returns the class whose ratio is closest to width/height.
func (p AspectPolicy) Classify(width int, height int) types.AspectRatio {
	if width <= 0 || height <= 0 {
		return p.Fallback
	}
	actual := float64(width) / float64(height)
	best := p.Fallback
	bestDistance := math.Inf(1)
	for _, candidate := range aspectCandidates {
		distance := math.Abs(candidate.weight - actual)
		if distance < bestDistance {
			best = candidate.ratio
			bestDistance = distance
		}
	}
	return best
}

// ParseAspect accepts "any", "16:9" and the "16_9"/"R16_9" spellings.
func ParseAspect(value string) (types.AspectRatio, bool) {
	normalized := strings.TrimSpace(value)
	if normalized == "" || strings.EqualFold(normalized, string(types.AspectAny)) {
		return types.AspectAny, true
	}
	normalized = strings.TrimPrefix(strings.TrimPrefix(normalized, "R"), "r")
	normalized = strings.ReplaceAll(normalized, "_", ":")
	for _, candidate := range aspectCandidates {
		if string(candidate.ratio) == normalized {
			return candidate.ratio, true
		}
	}
	return "", false
}

// Applies reports whether a rule gated on ruleAspect applies under current.
func (p AspectPolicy) Applies(ruleAspect types.AspectRatio, current types.AspectRatio) bool {
	return ruleAspect == types.AspectAny || ruleAspect == "" || ruleAspect == current
}
