package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// userRepository implements repository.UserRepository for PostgreSQL.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, permissions, reset_token, reset_token_expiry, created_at, updated_at`

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, permissions, reset_token, reset_token_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		permsToString(user.Permissions),
		user.ResetToken,
		user.ResetTokenExpiry,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a user by normalized email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, domain.NormalizeEmail(email))
}

// GetByResetToken retrieves the user holding the given reset token whose
// stored expiry is at or after expiryNotBefore.
func (r *userRepository) GetByResetToken(ctx context.Context, token string, expiryNotBefore time.Time) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_token = $1 AND reset_token_expiry >= $2
	`
	return r.getOne(ctx, query, token, expiryNotBefore.UTC())
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	user := &domain.User{}
	var perms string

	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&perms,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Permissions = permsFromString(perms)
	return user, nil
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, permissions = $4, reset_token = $5, reset_token_expiry = $6, updated_at = $7
		WHERE id = $8
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		permsToString(user.Permissions),
		user.ResetToken,
		user.ResetTokenExpiry,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ReplacePermissions replaces the user's permission set wholesale.
func (r *userRepository) ReplacePermissions(ctx context.Context, id int64, perms []domain.Permission) error {
	query := `UPDATE users SET permissions = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.db.Pool.Exec(ctx, query, permsToString(perms), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to replace permissions: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// List returns all users with pagination.
func (r *userRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		var perms string

		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&perms,
			&user.ResetToken,
			&user.ResetTokenExpiry,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		user.Permissions = permsFromString(perms)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return &repository.ListResult[domain.User]{
		Items:  users,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// ExistsByEmail checks if a user with the given normalized email exists.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, domain.NormalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// permsToString serializes a permission set to its comma-joined column form.
func permsToString(perms []domain.Permission) string {
	tags := make([]string, len(perms))
	for i, p := range perms {
		tags[i] = string(p)
	}
	return strings.Join(tags, ",")
}

// permsFromString parses the comma-joined column form.
func permsFromString(s string) []domain.Permission {
	if s == "" {
		return nil
	}
	var perms []domain.Permission
	for _, tag := range strings.Split(s, ",") {
		if p, err := domain.ParsePermission(strings.TrimSpace(tag)); err == nil {
			perms = append(perms, p)
		}
	}
	return perms
}

// Ensure userRepository implements repository.UserRepository.
var _ repository.UserRepository = (*userRepository)(nil)
