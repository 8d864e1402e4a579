package pipeline

import (
	"context"
	"sync"
)

// indexed carries a value or error tagged with its input position.
type indexed[T any] struct {
	index int
	val   T
	err   error
}

// Parallel applies fn to each value concurrently with up to n workers.
// Results are emitted in input order. The first error from fn or the source
// cancels the workers; results completed ahead of it are still emitted
// before the error. Closing the iterator waits for in-flight workers.
func Parallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	if n <= 0 {
		n = 1
	}
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			source := p.create(ctx)
			workerCtx, cancel := context.WithCancel(ctx)
			out := make(chan indexed[O], n)
			in := make(chan indexed[I], n)

			var wg sync.WaitGroup

			// Producer: pull from source into the input channel.
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer close(in)
				for i := 0; ; i++ {
					val, ok, err := source.Next(workerCtx)
					if err != nil {
						select {
						case out <- indexed[O]{index: i, err: err}:
						case <-workerCtx.Done():
						}
						return
					}
					if !ok {
						return
					}
					select {
					case in <- indexed[I]{index: i, val: val}:
					case <-workerCtx.Done():
						return
					}
				}
			}()

			for w := 0; w < n; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for item := range in {
						o, err := fn(workerCtx, item.val)
						if err != nil {
							select {
							case out <- indexed[O]{index: item.index, err: err}:
							case <-workerCtx.Done():
							}
							cancel()
							return
						}
						select {
						case out <- indexed[O]{index: item.index, val: o}:
						case <-workerCtx.Done():
							return
						}
					}
				}()
			}

			go func() {
				wg.Wait()
				close(out)
			}()

			return &orderedIter[O]{
				ch:      out,
				pending: make(map[int]O),
				closer: func() error {
					cancel()
					wg.Wait()
					return source.Close()
				},
			}
		},
	}
}

// orderedIter restores input order over results arriving out of order.
type orderedIter[T any] struct {
	ch      <-chan indexed[T]
	pending map[int]T
	next    int
	err     error
	done    bool
	closer  func() error
}

func (it *orderedIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	for {
		if val, ok := it.pending[it.next]; ok {
			delete(it.pending, it.next)
			it.next++
			return val, true, nil
		}
		if it.err != nil {
			return zero, false, it.err
		}
		if it.done {
			return zero, false, nil
		}
		select {
		case r, open := <-it.ch:
			if !open {
				it.done = true
				continue
			}
			if r.err != nil {
				it.err = r.err
				continue
			}
			it.pending[r.index] = r.val
		case <-ctx.Done():
			return zero, false, ctx.Err()
		}
	}
}

func (it *orderedIter[T]) Close() error {
	if it.closer != nil {
		return it.closer()
	}
	return nil
}
