package auth

import (
	"context"

	"github.com/debemdeboas/folio/internal/model"
)

type ContextKey string

const ContextKeyUserID ContextKey = "userID"

func ContextWithUserID(ctx context.Context, userID model.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (model.UserID, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(model.UserID)
	return userID, ok && userID != ""
}
