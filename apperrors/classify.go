package apperrors

import "context"

// classification records the error kind of one request after its handler
// has written the response. The request tracker middleware installs a holder
// per request and reads it back once the handler returns, so each failed
// request increments the error counter exactly once.
type classification struct {
	kind Kind
}

type classificationKey struct{}

// WithClassification installs an empty classification holder on ctx.
func WithClassification(ctx context.Context) context.Context {
	return context.WithValue(ctx, classificationKey{}, &classification{})
}

// Classify marks the request in ctx as failed with kind. The first write
// wins; calls without an installed holder are no-ops.
func Classify(ctx context.Context, k Kind) {
	if c, ok := ctx.Value(classificationKey{}).(*classification); ok && c.kind == "" {
		c.kind = k
	}
}

// ClassifiedKind returns the kind recorded for the request, or the empty
// string when the request succeeded.
func ClassifiedKind(ctx context.Context) Kind {
	if c, ok := ctx.Value(classificationKey{}).(*classification); ok {
		return c.kind
	}
	return ""
}
