package syncer

import "fmt"

// Span is a half-open index range [Start, End) into a ranked slice.
type Span struct {
	Start int
	End   int
}

// SplitBatches splits total items into spans of at most batchSize.
func SplitBatches(total, batchSize int) ([]Span, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if total < 0 {
		return nil, fmt.Errorf("total must be non-negative")
	}

	spans := make([]Span, 0, (total+batchSize-1)/batchSize)
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans, nil
}
