package ctxutil

import "context"

type traceDataKey struct{}
type travelerKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// WithTravelerID tags the request with the traveler whose session it drives.
func WithTravelerID(ctx context.Context, travelerID string) context.Context {
	return context.WithValue(ctx, travelerKey{}, travelerID)
}

func GetTravelerID(ctx context.Context) string {
	if v, ok := ctx.Value(travelerKey{}).(string); ok {
		return v
	}
	return ""
}
