// Package authz holds route-level authorization checks.
package authz

import "github.com/hitoshi/dda/internal/model"

// AuthorizeUserIsMe allows the request only when user is the owner targetID.
// An unresolved user fails with model.ErrUnauthenticated before ids are compared;
// a different user fails with *model.UnauthorizedError.
func AuthorizeUserIsMe(targetID string, user *model.User) error {
	if user == nil {
		return model.ErrUnauthenticated
	}
	if user.ID != targetID {
		return &model.UnauthorizedError{Resource: "User", ID: targetID}
	}
	return nil
}
