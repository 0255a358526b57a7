package yield

import (
	"sort"

	"yieldScope/internal/model"
)

// Rank drops strategies without positive APY and orders the rest by risk
// score, then APY, both descending. Ties keep their input order. The input
// slice is not modified.
func Rank(strategies []model.Strategy) []model.Strategy {
	out := make([]model.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s.APYPercent > 0 {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Risk.Score != out[j].Risk.Score {
			return out[i].Risk.Score > out[j].Risk.Score
		}
		return out[i].APYPercent > out[j].APYPercent
	})
	return out
}

// DedupeByID keeps the first strategy seen for each id.
func DedupeByID(strategies []model.Strategy) []model.Strategy {
	seen := make(map[string]struct{}, len(strategies))
	out := make([]model.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Recommend runs the full pipeline over raw pools and returns at most limit
// ranked strategies. A limit <= 0 returns all of them.
func Recommend(raws []model.RawPool, limit int) []model.Strategy {
	ranked := Rank(DedupeByID(NormalizeAll(raws)))
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
