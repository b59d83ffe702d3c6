// Package admin owns the singleton admin profile: authentication, password
// management and the display name shown in the dashboard header.
package admin

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/models"
)

var ErrInvalidPassword = errors.New("invalid password")

type Store interface {
	Admin() models.AdminData
	SetAdmin(ctx context.Context, admin models.AdminData) error
}

type Service struct {
	store     Store
	jwtSecret string
	tokenTTL  time.Duration
}

func New(store Store, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// EnsureDefaults seeds the factory admin record on first run. Existing data
// is never touched.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	a := s.store.Admin()
	if a.PasswordHash != "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(models.DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash default password")
	}
	name := a.Name
	if name == "" {
		name = models.DefaultAdminName
	}
	return s.store.SetAdmin(ctx, models.AdminData{Name: name, PasswordHash: string(hash)})
}

// Authenticate checks the password and issues a bearer JWT for the admin
// routes.
func (s *Service) Authenticate(password string) (string, error) {
	a := s.store.Admin()
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidPassword
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (s *Service) Profile() models.AdminData {
	return s.store.Admin()
}

func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("newPassword", "must not be empty")
	}
	a := s.store.Admin()
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	a.PasswordHash = string(hash)
	return s.store.SetAdmin(ctx, a)
}

// ResetPassword puts the factory default back. The operator confirms in the
// UI before this is called.
func (s *Service) ResetPassword(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(models.DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash default password")
	}
	a := s.store.Admin()
	a.PasswordHash = string(hash)
	return s.store.SetAdmin(ctx, a)
}

func (s *Service) UpdateName(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("name", "must not be empty")
	}
	a := s.store.Admin()
	a.Name = name
	return s.store.SetAdmin(ctx, a)
}
