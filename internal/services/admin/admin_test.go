package admin

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/models"
)

type fakeStore struct {
	admin models.AdminData
}

func (f *fakeStore) Admin() models.AdminData { return f.admin }
func (f *fakeStore) SetAdmin(ctx context.Context, a models.AdminData) error {
	f.admin = a
	return nil
}

func TestService_EnsureDefaults(t *testing.T) {
	st := &fakeStore{}
	svc := New(st, "secret", time.Hour)

	require.NoError(t, svc.EnsureDefaults(context.Background()))
	require.Equal(t, models.DefaultAdminName, st.admin.Name)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(st.admin.PasswordHash), []byte(models.DefaultAdminPassword)))

	// Second call keeps whatever is there.
	st.admin.Name = "Changed"
	prev := st.admin.PasswordHash
	require.NoError(t, svc.EnsureDefaults(context.Background()))
	require.Equal(t, "Changed", st.admin.Name)
	require.Equal(t, prev, st.admin.PasswordHash)
}

func TestService_Authenticate(t *testing.T) {
	st := &fakeStore{}
	svc := New(st, "secret", time.Hour)
	require.NoError(t, svc.EnsureDefaults(context.Background()))

	tok, err := svc.Authenticate(models.DefaultAdminPassword)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	_, err = svc.Authenticate("wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestService_ChangePassword(t *testing.T) {
	st := &fakeStore{}
	svc := New(st, "secret", time.Hour)
	require.NoError(t, svc.EnsureDefaults(context.Background()))

	err := svc.ChangePassword(context.Background(), "wrong", "newpass")
	require.ErrorIs(t, err, ErrInvalidPassword)

	var ve *apperr.ValidationError
	err = svc.ChangePassword(context.Background(), models.DefaultAdminPassword, "  ")
	require.ErrorAs(t, err, &ve)

	require.NoError(t, svc.ChangePassword(context.Background(), models.DefaultAdminPassword, "newpass"))
	_, err = svc.Authenticate("newpass")
	require.NoError(t, err)
	_, err = svc.Authenticate(models.DefaultAdminPassword)
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestService_ResetPassword(t *testing.T) {
	st := &fakeStore{}
	svc := New(st, "secret", time.Hour)
	require.NoError(t, svc.EnsureDefaults(context.Background()))
	require.NoError(t, svc.ChangePassword(context.Background(), models.DefaultAdminPassword, "newpass"))

	require.NoError(t, svc.ResetPassword(context.Background()))
	_, err := svc.Authenticate(models.DefaultAdminPassword)
	require.NoError(t, err)
}

func TestService_UpdateName(t *testing.T) {
	st := &fakeStore{}
	svc := New(st, "secret", time.Hour)
	require.NoError(t, svc.EnsureDefaults(context.Background()))

	var ve *apperr.ValidationError
	require.ErrorAs(t, svc.UpdateName(context.Background(), " "), &ve)

	require.NoError(t, svc.UpdateName(context.Background(), "Nethu"))
	require.Equal(t, "Nethu", svc.Profile().Name)
}
