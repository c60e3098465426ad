package httpx

import "context"

type ctxKey string

const ctxKeySubject ctxKey = "subject"

// ContextWithSubject returns ctx carrying the authenticated subject.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, subject)
}

// SubjectFromContext returns the subject set by AuthnMiddleware, or "".
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySubject).(string)
	return s
}
