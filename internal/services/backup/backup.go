// Package backup serializes the full application state into the portable
// envelope and restores from one. Restore is a wholesale overwrite, never a
// merge.
package backup

import (
	"context"
	"encoding/json"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/models"
	"github.com/pkg/errors"
)

type Store interface {
	List() []*models.Parcel
	Admin() models.AdminData
	ReplaceAll(ctx context.Context, parcels []*models.Parcel, admin models.AdminData) error
}

type Engine struct {
	store Store
}

func New(store Store) *Engine {
	return &Engine{store: store}
}

func (e *Engine) Snapshot() models.AppBackup {
	return models.AppBackup{
		AppName:   models.BackupAppName,
		Version:   models.BackupVersion,
		Parcels:   e.store.List(),
		AdminData: e.store.Admin(),
	}
}

// Export emits the envelope as pretty-printed UTF-8 JSON.
func (e *Engine) Export() ([]byte, error) {
	b, err := json.MarshalIndent(e.Snapshot(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode backup")
	}
	return b, nil
}

// Restore validates the envelope tag and swaps the entire store. A rejected
// envelope leaves the store untouched.
func (e *Engine) Restore(ctx context.Context, data []byte) error {
	var env models.AppBackup
	if err := json.Unmarshal(data, &env); err != nil {
		return &apperr.FormatError{Msg: "not a valid backup document"}
	}
	if env.AppName != models.BackupAppName {
		return &apperr.FormatError{Msg: "unrecognized appName tag"}
	}
	return e.store.ReplaceAll(ctx, env.Parcels, env.AdminData)
}
