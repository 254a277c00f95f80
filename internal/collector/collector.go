package collector

import "context"

// Result is one collected item or the error that prevented collecting it.
// Source identifies where the item came from, e.g. a file path.
type Result[T any] struct {
	Source string
	Value  T
	Err    error
}

type Collector[T any] interface {
	Collect(ctx context.Context, location string) (<-chan Result[T], error)
}
