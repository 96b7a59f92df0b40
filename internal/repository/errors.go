package repository

import (
	"errors"

	"github.com/lib/pq"

	"github.com/hitoshi/dda/internal/model"
)

const uniqueViolation = pq.ErrorCode("23505")

// constraintFields maps unique constraints to the API field they guard.
var constraintFields = map[string]string{
	"users_email_key":        "email",
	"users_phone_number_key": "phoneNumber",
}

// asUserConflict converts a unique violation on users into *model.ConflictError.
// Other errors are returned unchanged.
func asUserConflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	field, ok := constraintFields[pqErr.Constraint]
	if !ok {
		field = pqErr.Constraint
	}
	return &model.ConflictError{Resource: "User", Field: field}
}
