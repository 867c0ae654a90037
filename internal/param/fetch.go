package param

import "context"

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}

// Resolve prefers a value given directly and falls back to fetching path.
// Both empty yields an empty value.
func Resolve(ctx context.Context, f func() Fetcher, value, path string) (string, error) {
	if value != "" || path == "" {
		return value, nil
	}
	return f().Fetch(ctx, path)
}

// ResolveAll is Resolve for lists.
func ResolveAll(ctx context.Context, f func() Fetcher, values []string, path string) ([]string, error) {
	if len(values) > 0 || path == "" {
		return values, nil
	}
	return f().FetchAll(ctx, path)
}
