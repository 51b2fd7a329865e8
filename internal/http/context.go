package http

import (
	"context"

	"github.com/example/team-portal/internal/identity"
)

type contextKey string

const (
	meetingIDContextKey contextKey = "meeting_id"
	userIDContextKey    contextKey = "user_id"
)

// ContextWithMeetingID injects the meeting identifier resolved from the
// request path.
func ContextWithMeetingID(ctx context.Context, meetingID string) context.Context {
	return context.WithValue(ctx, meetingIDContextKey, meetingID)
}

// MeetingIDFromContext extracts a meeting identifier previously associated
// with the context.
func MeetingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(meetingIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request
// path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with
// the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// currentUser resolves the acting user placed in the context by the session
// middleware.
func currentUser(ctx context.Context) (identity.User, bool) {
	return identity.UserFromContext(ctx)
}
