// Package bootstrap wires the process-level runtime: database, cache and
// optional development fixtures.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"alumnet/internal/cache"
	"alumnet/internal/config"
	"alumnet/internal/database"
	"alumnet/internal/middleware"
	"alumnet/internal/models"
	"alumnet/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedListings loads the embedded listing fixtures when the tables are empty.
	SeedListings bool
}

// InitRuntime connects to the database and Redis, then runs the development
// bootstrap steps enabled by cfg and opts. A nil Redis client means the
// cache layer is disabled.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if err := EnsureDevAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedListings {
		n, err := seed.Listings(db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed listing fixtures: %w", err)
		}
		if n > 0 {
			middleware.Logger.Info("listing fixtures seeded", slog.Int("count", n))
		}
	}

	return db, r, nil
}

// EnsureDevAdmin creates or promotes the configured development admin. It is
// a no-op outside development or when DEV_BOOTSTRAP_ADMIN is off.
func EnsureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" {
		username = "alumnet_admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@alumnet.local"
	}
	if cfg.DevAdminPassword == "" {
		return errors.New("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{
				Username: username,
				Email:    email,
				Password: string(hashed),
				IsAdmin:  true,
				IsActive: true,
				IsAlumni: true,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", admin.ID).
				Updates(map[string]any{"is_admin": true, "is_active": true}).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development admin ensured", slog.String("username", username))
	return nil
}
