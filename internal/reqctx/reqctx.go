// Package reqctx carries request-scoped state through context.Context.
// The transaction middleware stores the transaction id and the authentication
// middleware stores the resolved user; handlers and the log handler read them.
package reqctx

import (
	"context"

	"github.com/hitoshi/dda/internal/model"
)

type contextKey string

var (
	transactionIDKey = contextKey("tid")
	userKey          = contextKey("user")
	userSlotKey      = contextKey("user_slot")
)

// userSlot lets a context created before authentication observe the user
// resolved further down the chain.
type userSlot struct {
	user *model.User
}

// WithUserSlot returns a copy of ctx in which a later WithUser on any derived
// context also becomes visible to User(ctx).
func WithUserSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, userSlotKey, &userSlot{})
}

// WithTransactionID returns a copy of ctx carrying the request's transaction id.
func WithTransactionID(ctx context.Context, tid string) context.Context {
	return context.WithValue(ctx, transactionIDKey, tid)
}

// TransactionID returns the transaction id, or "" outside a request.
func TransactionID(ctx context.Context) string {
	tid, _ := ctx.Value(transactionIDKey).(string)
	return tid
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	if slot, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		slot.user = user
	}
	return context.WithValue(ctx, userKey, user)
}

// User returns the authenticated user, or nil when the request carries no valid session.
func User(ctx context.Context) *model.User {
	if user, ok := ctx.Value(userKey).(*model.User); ok {
		return user
	}
	if slot, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		return slot.user
	}
	return nil
}

// UserID returns the authenticated user's id, or "".
func UserID(ctx context.Context) string {
	if user := User(ctx); user != nil {
		return user.ID
	}
	return ""
}
