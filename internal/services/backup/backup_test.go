package backup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/models"
)

type fakeStore struct {
	parcels []*models.Parcel
	admin   models.AdminData

	replacedParcels []*models.Parcel
	replacedAdmin   models.AdminData
	replaceCalls    int
}

func (f *fakeStore) List() []*models.Parcel    { return f.parcels }
func (f *fakeStore) Admin() models.AdminData   { return f.admin }
func (f *fakeStore) ReplaceAll(ctx context.Context, parcels []*models.Parcel, admin models.AdminData) error {
	f.replacedParcels = parcels
	f.replacedAdmin = admin
	f.replaceCalls++
	return nil
}

func sampleState() *fakeStore {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &fakeStore{
		parcels: []*models.Parcel{{
			ID:             3,
			TrackingNumber: "TRK3",
			CustomerName:   "John",
			ParcelValue:    "10.00",
			Status:         models.StatusDelivered,
			CreationDate:   now,
			StatusHistory: []models.StatusHistoryEntry{
				{Status: models.StatusPendingToDeliver, Timestamp: now},
				{Status: models.StatusDelivered, Timestamp: now.Add(time.Hour)},
			},
		}},
		admin: models.AdminData{Name: "Admin", PasswordHash: "h"},
	}
}

func TestEngine_ExportRestoreRoundTrip(t *testing.T) {
	src := sampleState()
	data, err := New(src).Export()
	require.NoError(t, err)

	var env models.AppBackup
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, models.BackupAppName, env.AppName)
	require.Equal(t, models.BackupVersion, env.Version)

	dst := &fakeStore{}
	require.NoError(t, New(dst).Restore(context.Background(), data))
	require.Equal(t, 1, dst.replaceCalls)
	require.Len(t, dst.replacedParcels, 1)

	got := dst.replacedParcels[0]
	want := src.parcels[0]
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Status, got.Status)
	require.Len(t, got.StatusHistory, 2)
	require.True(t, got.StatusHistory[1].Timestamp.Equal(want.StatusHistory[1].Timestamp))
	require.Equal(t, src.admin, dst.replacedAdmin)
}

func TestEngine_Restore_rejectsWrongTag(t *testing.T) {
	dst := &fakeStore{}
	env := models.AppBackup{AppName: "some-other-app", Version: 1}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	err = New(dst).Restore(context.Background(), data)
	var fe *apperr.FormatError
	require.ErrorAs(t, err, &fe)
	require.Zero(t, dst.replaceCalls)
}

func TestEngine_Restore_rejectsGarbage(t *testing.T) {
	dst := &fakeStore{}
	err := New(dst).Restore(context.Background(), []byte("{not json"))
	var fe *apperr.FormatError
	require.ErrorAs(t, err, &fe)
	require.Zero(t, dst.replaceCalls)
}
