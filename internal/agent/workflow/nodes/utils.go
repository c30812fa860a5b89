package nodes

import (
	"context"
	"errors"
	"strings"
)

// rule is a horizontal separator line of width n.
func rule(n int) string {
	return strings.Repeat("=", n)
}

// interrupted reports whether err means the session is ending rather than
// a collaborator fault the step can recover from.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
