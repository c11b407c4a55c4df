package cli

import (
	"context"
	"time"
)

func withCommandStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, commandStartKey{}, t)
}

func commandStart(ctx context.Context) (time.Time, bool) {
	if ctx == nil {
		return time.Time{}, false
	}
	t, ok := ctx.Value(commandStartKey{}).(time.Time)
	return t, ok
}
