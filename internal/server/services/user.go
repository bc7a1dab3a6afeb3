// Package services contains server-side business logic: authentication,
// report intake with idempotent creation, and contact management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
	"github.com/dmitrijs2005/fieldreport/internal/server/auth"
	"github.com/dmitrijs2005/fieldreport/internal/server/config"
	"github.com/dmitrijs2005/fieldreport/internal/server/models"
	"github.com/dmitrijs2005/fieldreport/internal/server/repositories/repomanager"
)

// UserService handles login and first-run user seeding.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	log                   logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		log:                   log.With("module", "users"),
	}
}

// Login verifies the credentials and returns a signed session token plus the
// user record. Unknown users and wrong passwords are indistinguishable to
// the caller.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrInvalidCredentials
		}
		return "", nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, user, nil
}

// SeedUsers creates the default accounts on an empty database so a fresh
// deployment is usable immediately. The passwords are development defaults
// and must be changed before the server faces real traffic.
func (s *UserService) SeedUsers(ctx context.Context) error {
	repo := s.repomanager.Users(s.db)

	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("error counting users: %w", err)
	}
	if n > 0 {
		return nil
	}

	defaults := []struct {
		username string
		password string
		name     string
		role     string
	}{
		{"admin", "admin123", "Administrador", models.RoleAdmin},
		{"capturista", "campo123", "Capturista de Campo", models.RoleCapturist},
	}

	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}
		if _, err := repo.Create(ctx, &models.User{
			UserName:     d.username,
			PasswordHash: hash,
			Name:         d.name,
			Role:         d.role,
		}); err != nil {
			return fmt.Errorf("error creating user %s: %w", d.username, err)
		}
		s.log.Info(ctx, "seeded default user", "username", d.username, "role", d.role)
	}

	return nil
}
