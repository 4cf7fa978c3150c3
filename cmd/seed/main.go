// seed creates the development admin account; safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/FormaKit/Backend/internal/config"
	"github.com/FormaKit/Backend/internal/db"
	"github.com/FormaKit/Backend/internal/security"
	userdomain "github.com/FormaKit/Backend/internal/user/domain"
	userrepo "github.com/FormaKit/Backend/internal/user/repository"
)

const (
	adminEmail    = "admin@formakit.local"
	adminUsername = "admin"
	adminPassword = "admin-dev-password"
)

// userStore is the slice of the user repository seeding needs.
type userStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *userdomain.User) (*userdomain.User, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("config:", err)
	}
	if cfg.Env == "production" {
		fatal("seed:", fmt.Errorf("refusing to seed a production database"))
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		fatal("database:", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := seedAdmin(ctx, userrepo.NewPostgresRepository(database), security.NewHasher(cfg.BcryptCost))
	if err != nil {
		fatal("seed:", err)
	}
	if admin == nil {
		fmt.Println("admin user already present, nothing to do")
		return
	}
	fmt.Printf("created admin user %s (%s)\n", adminEmail, admin.ID)
}

// seedAdmin inserts the dev admin unless one already exists. Returns the
// created user, or nil when the admin was already present.
func seedAdmin(ctx context.Context, users userStore, hasher *security.Hasher) (*userdomain.User, error) {
	exists, err := users.EmailExists(ctx, adminEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	hash, err := hasher.Hash([]byte(adminPassword))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return users.Create(ctx, &userdomain.User{
		ID:           uuid.NewString(),
		Email:        adminEmail,
		Username:     adminUsername,
		PasswordHash: hash,
		Role:         userdomain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func fatal(prefix string, err error) {
	fmt.Fprintln(os.Stderr, prefix, err)
	os.Exit(1)
}
