package lexicon

import (
	"sort"

	"github.com/antzucaro/matchr"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a key to be
// offered as a suggestion. Below this the match is noise.
const suggestThreshold = 0.82

// Suggest returns up to max base-dictionary keys that are close spellings of
// key, best match first. Used when a word is unknown everywhere, so the
// teaching prompt can offer likely typo corrections.
func (l *Lexicon) Suggest(key string, max int) []string {
	if key == "" || max <= 0 {
		return nil
	}

	type scored struct {
		key   string
		score float64
	}
	var candidates []scored
	for _, k := range l.keys {
		s := matchr.JaroWinkler(key, k, false)
		if s >= suggestThreshold {
			candidates = append(candidates, scored{key: k, score: s})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		// Equal similarity: prefer the smaller edit distance.
		return matchr.Levenshtein(key, candidates[i].key) < matchr.Levenshtein(key, candidates[j].key)
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.key
	}
	return out
}
