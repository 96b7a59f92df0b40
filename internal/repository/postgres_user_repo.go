package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/dda/internal/model"
)

const userColumns = `id, email, given_name, family_name, phone_number, profile_picture,
	is_email_verified, is_phone_verified, source, created_at, updated_at, deleted_at`

// PostgresUserRepo is the PostgreSQL UserRepository.
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo returns a PostgresUserRepo.
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID returns the user with the given id, or nil.
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail returns the user whose email equals email exactly, or nil.
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByPhoneNumber returns the user owning phoneNumber, or nil.
func (r *PostgresUserRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*model.User, error) {
	user, err := r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1 AND deleted_at IS NULL`, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by phone number: %w", err)
	}
	return user, nil
}

// Create inserts user.
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, given_name, family_name, phone_number, profile_picture,
			is_email_verified, is_phone_verified, source, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Email, user.GivenName, user.FamilyName, user.PhoneNumber, user.ProfilePicture,
		user.IsEmailVerified, user.IsPhoneVerified, string(user.Source), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", asUserConflict(err))
	}
	return nil
}

// Update overwrites the mutable profile columns of user.
func (r *PostgresUserRepo) Update(ctx context.Context, user *model.User) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET email = $2, given_name = $3, family_name = $4, phone_number = $5, profile_picture = $6,
			 is_email_verified = $7, is_phone_verified = $8, updated_at = $9
		 WHERE id = $1 AND deleted_at IS NULL`,
		user.ID, user.Email, user.GivenName, user.FamilyName, user.PhoneNumber, user.ProfilePicture,
		user.IsEmailVerified, user.IsPhoneVerified, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", asUserConflict(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &model.NotFoundError{Resource: "User", ID: user.ID}
	}
	return nil
}

func (r *PostgresUserRepo) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	var source string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.GivenName, &user.FamilyName, &user.PhoneNumber, &user.ProfilePicture,
		&user.IsEmailVerified, &user.IsPhoneVerified, &source, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.Source = model.UserSource(source)
	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
