package lexicon

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Rand supplies the randomness for weighted draws. Production code uses the
// auto-seeded math/rand/v2 source; tests substitute deterministic values.
type Rand interface {
	Float64() float64
}

type sysRand struct{}

func (sysRand) Float64() float64 { return rand.Float64() }

// SystemRand is the default full-entropy generator.
var SystemRand Rand = sysRand{}

// PickWeighted draws one word not in exclude, with probability proportional
// to (max(score,0)+eps)^alpha. Larger alpha sharpens the preference for
// high-scoring words. Returns ok=false when no candidate has a usable weight.
func PickWeighted(lex Lexicon, exclude map[string]struct{}, alpha float64, rnd Rand) (string, bool) {
	const eps = 1e-6

	// Sorted candidate order keeps draws reproducible under a
	// deterministic Rand; the distribution itself does not depend on it.
	words := make([]string, 0, len(lex))
	for w := range lex {
		if _, skip := exclude[w]; skip {
			continue
		}
		words = append(words, w)
	}
	sort.Strings(words)

	keys := make([]string, 0, len(words))
	cum := make([]float64, 0, len(words))
	total := 0.0
	for _, w := range words {
		wt := math.Pow(math.Max(lex[w], 0)+eps, alpha)
		if math.IsInf(wt, 0) || math.IsNaN(wt) || wt <= 0 {
			continue
		}
		total += wt
		keys = append(keys, w)
		cum = append(cum, total)
	}
	if len(keys) == 0 {
		return "", false
	}

	r := rnd.Float64() * total
	for i, c := range cum {
		if r < c {
			return keys[i], true
		}
	}
	return keys[len(keys)-1], true
}
