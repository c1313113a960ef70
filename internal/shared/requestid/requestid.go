// Package requestid carries the per-request correlation ID between the HTTP
// middleware that assigns it and the code that logs on behalf of a request.
package requestid

import "context"

type key struct{}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key{}, id)
}

// FromContext returns the request ID stored in ctx, or "" when there is none.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(key{}).(string)
	return id
}
