// Package redisstore is the durable mirror of the in-memory parcel store:
// two keys (parcel list, admin record) written together on every mutation.
package redisstore

import (
	"context"
	"encoding/json"

	"github.com/BearBump/ParcelDesk/internal/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	parcelsKey = "parceldesk:parcels"
	adminKey   = "parceldesk:admin"
)

type Store struct {
	c *redis.Client
}

func New(addr string) *Store {
	return &Store{
		c: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func (s *Store) Close() error {
	return s.c.Close()
}

// LoadSnapshot reads the persisted state at startup. A missing key is not an
// error: first run starts empty and admin falls back to factory defaults.
func (s *Store) LoadSnapshot(ctx context.Context) ([]*models.Parcel, *models.AdminData, error) {
	var parcels []*models.Parcel
	b, err := s.c.Get(ctx, parcelsKey).Bytes()
	switch {
	case err == redis.Nil:
	case err != nil:
		return nil, nil, errors.Wrap(err, "redis get parcels")
	default:
		if err := json.Unmarshal(b, &parcels); err != nil {
			return nil, nil, errors.Wrap(err, "decode parcels snapshot")
		}
	}

	var admin *models.AdminData
	b, err = s.c.Get(ctx, adminKey).Bytes()
	switch {
	case err == redis.Nil:
	case err != nil:
		return nil, nil, errors.Wrap(err, "redis get admin")
	default:
		admin = &models.AdminData{}
		if err := json.Unmarshal(b, admin); err != nil {
			return nil, nil, errors.Wrap(err, "decode admin snapshot")
		}
	}

	return parcels, admin, nil
}

// SaveSnapshot replaces both keys in one MULTI/EXEC so a crash mid-write
// never leaves parcels and admin from different generations.
func (s *Store) SaveSnapshot(ctx context.Context, parcels []*models.Parcel, admin models.AdminData) error {
	pb, err := json.Marshal(parcels)
	if err != nil {
		return errors.Wrap(err, "encode parcels snapshot")
	}
	ab, err := json.Marshal(admin)
	if err != nil {
		return errors.Wrap(err, "encode admin snapshot")
	}

	_, err = s.c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, parcelsKey, pb, 0)
		pipe.Set(ctx, adminKey, ab, 0)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis save snapshot")
	}
	return nil
}
