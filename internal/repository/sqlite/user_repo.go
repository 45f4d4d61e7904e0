package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/repository"
)

// userRepository implements repository.UserRepository for SQLite.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, permissions, reset_token, reset_token_expiry, created_at, updated_at`

// Create creates a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, permissions, reset_token, reset_token_expiry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		permsToString(user.Permissions),
		nullString(user.ResetToken),
		nullExpiryString(user.ResetTokenExpiry),
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by normalized email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByResetToken retrieves the user holding the given reset token whose
// stored expiry is at or after expiryNotBefore. RFC3339 UTC strings sort
// lexicographically, so the comparison happens in SQL.
func (r *userRepository) GetByResetToken(ctx context.Context, token string, expiryNotBefore time.Time) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_token = ? AND reset_token_expiry >= ?
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, token, expiryNotBefore.UTC().Format(time.RFC3339)))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	return user, nil
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, permissions = ?, reset_token = ?, reset_token_expiry = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		permsToString(user.Permissions),
		nullString(user.ResetToken),
		nullExpiryString(user.ResetTokenExpiry),
		user.UpdatedAt.Format(time.RFC3339),
		user.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ReplacePermissions replaces the user's permission set wholesale.
func (r *userRepository) ReplacePermissions(ctx context.Context, id int64, perms []domain.Permission) error {
	query := `UPDATE users SET permissions = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		permsToString(perms),
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to replace permissions: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// List returns all users with pagination.
func (r *userRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
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
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, domain.NormalizeEmail(email)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUser scans a full user row.
func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var perms, createdAt, updatedAt string
	var resetToken, resetExpiry sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&perms,
		&resetToken,
		&resetExpiry,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Permissions = permsFromString(perms)
	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExpiry.Valid {
		t, err := time.Parse(time.RFC3339, resetExpiry.String)
		if err == nil {
			user.ResetTokenExpiry = &t
		}
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return user, nil
}

// permsToString serializes a permission set to its comma-joined column form.
func permsToString(perms []domain.Permission) string {
	tags := make([]string, len(perms))
	for i, p := range perms {
		tags[i] = string(p)
	}
	return strings.Join(tags, ",")
}

// permsFromString parses the comma-joined column form. Unknown tags are
// dropped rather than failing the read; writes go through ParsePermissions.
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

// nullString returns a nullable column value for an optional string.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullExpiryString returns a nullable column value for an optional timestamp.
func nullExpiryString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// Ensure userRepository implements repository.UserRepository.
var _ repository.UserRepository = (*userRepository)(nil)
