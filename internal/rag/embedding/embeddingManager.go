package embedding

import "context"

// Embedder converts text into fixed-dimension vectors. Embed is one-to-one
// and order-preserving with its input; implementations batch requests
// internally to bound external call volume. Implementations never retry;
// failures are classified as faults.TransientError or faults.PermanentError
// and retry policy belongs to the caller.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Batches splits texts into consecutive slices of at most size elements,
// preserving order. A non-positive size yields a single batch.
func Batches(texts []string, size int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	if size <= 0 || len(texts) <= size {
		return [][]string{texts}
	}
	batches := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[start:end])
	}
	return batches
}
