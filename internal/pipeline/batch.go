package pipeline

import "fmt"

// Batch is the half-open index range [From, To) of a block list.
type Batch struct {
	From int
	To   int
}

// SplitBatches splits total items into consecutive batches of at most size.
func SplitBatches(total, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if total < 0 {
		return nil, fmt.Errorf("total must not be negative")
	}

	batches := make([]Batch, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		batches = append(batches, Batch{From: start, To: end})
	}
	return batches, nil
}
