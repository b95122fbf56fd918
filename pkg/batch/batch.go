// Package batch partitions slices into fixed-size, order-preserving chunks.
package batch

import (
	"errors"
	"fmt"
)

// ErrInvalidBatchSize is returned when a batch size below 1 is requested.
var ErrInvalidBatchSize = errors.New("invalid argument: batch size must be at least 1")

// Split partitions items into contiguous batches of size elements.
// Every batch except possibly the last holds exactly size elements, and
// concatenating the batches reproduces items in order. An empty input
// yields no batches.
//
// The returned batches share the backing array of items but have their
// capacity capped, so appending to one batch never overwrites another.
func Split[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidBatchSize, size)
	}
	if len(items) == 0 {
		return nil, nil
	}

	count := (len(items) + size - 1) / size
	batches := make([][]T, 0, count)
	for i := 0; i < count; i++ {
		start := i * size
		end := min(len(items), start+size)
		batches = append(batches, items[start:end:end])
	}
	return batches, nil
}

// Count returns the number of batches Split would produce.
func Count(n, size int) (int, error) {
	if size < 1 {
		return 0, fmt.Errorf("%w (got %d)", ErrInvalidBatchSize, size)
	}
	return (n + size - 1) / size, nil
}
