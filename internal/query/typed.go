package query

import "context"

// Get fetches key through c and returns the data as T.
func Get[T any](ctx context.Context, c *Cache, key Key, opts Options, fn func(context.Context) (T, error)) (T, State, error) {
	st, err := c.Fetch(ctx, key, opts, Loader(fn))
	v, _ := Typed[T](st)
	return v, st, err
}

// Loader adapts a typed fetch function to a FetchFunc.
func Loader[T any](fn func(context.Context) (T, error)) FetchFunc {
	return func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
