package knowledge

import "sort"

// Default retrieval settings, overridable via configuration.
const (
	DefaultTopK               = 5
	DefaultRelevanceThreshold = 0.3
)

// Retriever ranks knowledge items against a matching context. It holds no
// per-request state and is safe for concurrent use.
type Retriever struct {
	threshold float64
	topK      int
}

// NewRetriever creates a Retriever. Non-positive topK falls back to
// DefaultTopK; a negative threshold falls back to the default.
func NewRetriever(threshold float64, topK int) *Retriever {
	if threshold < 0 {
		threshold = DefaultRelevanceThreshold
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{threshold: threshold, topK: topK}
}

// Threshold returns the configured relevance threshold (exclusive bound).
func (r *Retriever) Threshold() float64 { return r.threshold }

// Retrieve scores every item in the collection, keeps those scoring strictly
// above the threshold, sorts by descending score with the original collection
// order as the tie-break, and truncates to topK. Non-positive topK uses the
// configured default.
func (r *Retriever) Retrieve(col Collection, ctx Context, transcript string, topK int) []Result {
	if topK <= 0 {
		topK = r.topK
	}

	var results []Result
	for _, item := range col.Items {
		score, matched := Score(item, ctx, transcript)
		if score > r.threshold {
			results = append(results, Result{
				ItemID:  item.ID,
				Title:   item.Title,
				Source:  col.Kind,
				Score:   score,
				Matched: matched,
				Content: item.Content,
			})
		}
	}

	// Stable: equal scores keep source-file order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
