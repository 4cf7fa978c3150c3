package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/FormaKit/Backend/internal/store"
	"github.com/FormaKit/Backend/internal/user/domain"
)

// userSchema maps domain.User onto the users collection.
var userSchema = store.Schema[domain.User]{
	Table: "users",
	Columns: []string{
		"id", "email", "username", "password_hash", "role",
		"company_id", "department_id", "is_active", "created_at", "updated_at",
	},
	Scan: func(row store.RowScanner) (*domain.User, error) {
		var u domain.User
		var company, department sql.NullString
		err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
			&company, &department, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		u.CompanyID = company.String
		u.DepartmentID = department.String
		return &u, nil
	},
	Values: func(u *domain.User) []any {
		return []any{
			u.ID, u.Email, u.Username, u.PasswordHash, u.Role,
			nullString(u.CompanyID), nullString(u.DepartmentID),
			u.IsActive, u.CreatedAt, u.UpdatedAt,
		}
	},
}

// PostgresRepository persists users through the users record collection.
type PostgresRepository struct {
	users *store.Collection[domain.User]
}

// NewPostgresRepository returns a user repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{users: store.NewCollection(db, userSchema)}
}

// Create persists the user. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.users.Create(ctx, u)
}

// GetByID returns the user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users.FindByID(ctx, id)
}

// GetByEmail returns the user with the given (lower-cased) email, or nil if
// not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	list, err := r.users.FindAll(ctx, store.Filter{Where: map[string]any{"email": email}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// EmailExists reports whether a user with the given email exists.
func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.users.Exists(ctx, map[string]any{"email": email})
}

// UsernameExists reports whether a user with the given username exists.
func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.users.Exists(ctx, map[string]any{"username": username})
}

// UpdatePassword replaces the user's password hash and returns the updated
// user, or nil if the user does not exist.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (*domain.User, error) {
	return r.users.Update(ctx, id, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
}

// List returns users ordered by created_at descending.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return r.users.FindAll(ctx, store.Filter{
		OrderBy: []store.Order{{Field: "created_at", Desc: true}},
		Limit:   limit,
		Offset:  offset,
	})
}

// Count returns the total number of users.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	return r.users.Count(ctx, nil)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
