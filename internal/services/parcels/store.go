// Package parcels owns the authoritative in-memory parcel collection and its
// durable mirror. All mutations go through here; derived views (query,
// analytics) read copies.
package parcels

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/broker/messages"
	"github.com/BearBump/ParcelDesk/internal/models"
	"github.com/pkg/errors"
)

type Mirror interface {
	LoadSnapshot(ctx context.Context) ([]*models.Parcel, *models.AdminData, error)
	SaveSnapshot(ctx context.Context, parcels []*models.Parcel, admin models.AdminData) error
}

type StatusEventPublisher interface {
	PublishStatusUpdated(ctx context.Context, msg messages.ParcelStatusUpdated) error
}

type Store struct {
	mu      sync.RWMutex
	byID    map[uint64]*models.Parcel
	order   []uint64 // insertion order, keeps List output stable
	admin   models.AdminData
	nextID  uint64
	mirror  Mirror
	events  StatusEventPublisher // может быть nil, если брокер не настроен
	now     func() time.Time
}

func New(mirror Mirror, events StatusEventPublisher) *Store {
	return &Store{
		byID:   map[uint64]*models.Parcel{},
		nextID: 1,
		mirror: mirror,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load pulls the persisted snapshot into memory. Call once at startup,
// before the HTTP server starts serving.
func (s *Store) Load(ctx context.Context) error {
	parcels, admin, err := s.mirror.LoadSnapshot(ctx)
	if err != nil {
		return errors.Wrap(err, "load snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[uint64]*models.Parcel, len(parcels))
	s.order = s.order[:0]
	s.nextID = 1
	for _, p := range parcels {
		s.byID[p.ID] = p
		s.order = append(s.order, p.ID)
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	if admin != nil {
		s.admin = *admin
	}
	return nil
}

func validateInput(in models.ParcelCreateInput) error {
	if strings.TrimSpace(in.TrackingNumber) == "" {
		return apperr.Validation("trackingNumber", "must not be empty")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return apperr.Validation("customerName", "must not be empty")
	}
	if strings.TrimSpace(in.CustomerAddress) == "" {
		return apperr.Validation("customerAddress", "must not be empty")
	}
	if strings.TrimSpace(in.CustomerMobile) == "" {
		return apperr.Validation("customerMobile", "must not be empty")
	}
	v, err := strconv.ParseFloat(in.ParcelValue, 64)
	if err != nil {
		return apperr.Validation("parcelValue", "must be a number")
	}
	if v <= 0 {
		return apperr.Validation("parcelValue", "must be positive")
	}
	return nil
}

// insertNew assigns id/status/creationDate/history. Caller holds the lock.
func (s *Store) insertNew(in models.ParcelCreateInput) *models.Parcel {
	now := s.now()
	p := &models.Parcel{
		ID:              s.nextID,
		TrackingNumber:  in.TrackingNumber,
		CustomerName:    in.CustomerName,
		CustomerAddress: in.CustomerAddress,
		CustomerMobile:  in.CustomerMobile,
		ParcelValue:     in.ParcelValue,
		Status:          models.StatusPendingToDeliver,
		CreationDate:    now,
		StatusHistory: []models.StatusHistoryEntry{
			{Status: models.StatusPendingToDeliver, Timestamp: now},
		},
	}
	s.nextID++
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

func (s *Store) Create(ctx context.Context, in models.ParcelCreateInput) (*models.Parcel, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.insertNew(in)
	if err := s.flushLocked(ctx); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Update replaces the editable fields only. Id, status, creationDate and
// statusHistory are untouched.
func (s *Store) Update(ctx context.Context, id uint64, in models.ParcelUpdateInput) (*models.Parcel, error) {
	if err := validateInput(models.ParcelCreateInput(in)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, &apperr.NotFoundError{ID: id}
	}
	p.TrackingNumber = in.TrackingNumber
	p.CustomerName = in.CustomerName
	p.CustomerAddress = in.CustomerAddress
	p.CustomerMobile = in.CustomerMobile
	p.ParcelValue = in.ParcelValue

	if err := s.flushLocked(ctx); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Delete is a hard removal; ids are never reused afterwards.
func (s *Store) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return &apperr.NotFoundError{ID: id}
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.flushLocked(ctx)
}

// SetStatus appends to the history and moves the current status. There is no
// transition graph: any status may follow any other, including itself.
func (s *Store) SetStatus(ctx context.Context, id uint64, newStatus string) (*models.Parcel, error) {
	if !models.ValidStatus(newStatus) {
		return nil, apperr.Validation("status", "unknown status: "+newStatus)
	}

	s.mu.Lock()
	p, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, &apperr.NotFoundError{ID: id}
	}

	now := s.now()
	oldStatus := p.Status
	p.StatusHistory = append(p.StatusHistory, models.StatusHistoryEntry{Status: newStatus, Timestamp: now})
	p.Status = newStatus

	err := s.flushLocked(ctx)
	out := p.Clone()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publishStatusUpdated(ctx, out, oldStatus, now)
	return out, nil
}

// BulkSetStatus applies SetStatus to each id; unknown ids are skipped
// silently, the batch never aborts.
func (s *Store) BulkSetStatus(ctx context.Context, ids []uint64, newStatus string) error {
	if !models.ValidStatus(newStatus) {
		return apperr.Validation("status", "unknown status: "+newStatus)
	}

	s.mu.Lock()
	now := s.now()
	var published []*models.Parcel
	old := map[uint64]string{}
	for _, id := range ids {
		p, ok := s.byID[id]
		if !ok {
			continue
		}
		old[p.ID] = p.Status
		p.StatusHistory = append(p.StatusHistory, models.StatusHistoryEntry{Status: newStatus, Timestamp: now})
		p.Status = newStatus
		published = append(published, p.Clone())
	}
	err := s.flushLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, p := range published {
		s.publishStatusUpdated(ctx, p, old[p.ID], now)
	}
	return nil
}

type BulkCreateResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// BulkCreate is the system's only tracking-number uniqueness enforcement
// point: a candidate whose trackingNumber exactly matches an existing
// parcel's is skipped, everything else gets create semantics.
func (s *Store) BulkCreate(ctx context.Context, records []models.ParcelCreateInput) (BulkCreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.byID))
	for _, p := range s.byID {
		existing[p.TrackingNumber] = struct{}{}
	}

	var res BulkCreateResult
	for _, in := range records {
		if _, dup := existing[in.TrackingNumber]; dup {
			res.Skipped++
			continue
		}
		s.insertNew(in)
		existing[in.TrackingNumber] = struct{}{}
		res.Added++
	}

	if err := s.flushLocked(ctx); err != nil {
		return BulkCreateResult{}, err
	}
	return res, nil
}

// ReplaceAll swaps the whole dataset wholesale (restore path). No partial
// state is observable: the swap happens under the write lock.
func (s *Store) ReplaceAll(ctx context.Context, parcels []*models.Parcel, admin models.AdminData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[uint64]*models.Parcel, len(parcels))
	order := make([]uint64, 0, len(parcels))
	nextID := uint64(1)
	for _, p := range parcels {
		cp := p.Clone()
		byID[cp.ID] = cp
		order = append(order, cp.ID)
		if cp.ID >= nextID {
			nextID = cp.ID + 1
		}
	}

	s.byID = byID
	s.order = order
	s.nextID = nextID
	s.admin = admin

	return s.flushLocked(ctx)
}

func (s *Store) Get(id uint64) (*models.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, &apperr.NotFoundError{ID: id}
	}
	return p.Clone(), nil
}

// List returns defensive copies in insertion order.
func (s *Store) List() []*models.Parcel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Parcel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// FindByTrackingNumber is the public lookup path: exact match, case
// insensitive, whitespace trimmed.
func (s *Store) FindByTrackingNumber(trackingNumber string) (*models.Parcel, bool) {
	want := strings.ToLower(strings.TrimSpace(trackingNumber))
	if want == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		p := s.byID[id]
		if strings.ToLower(strings.TrimSpace(p.TrackingNumber)) == want {
			return p.Clone(), true
		}
	}
	return nil, false
}

// StatusCounts feeds the dashboard cards.
func (s *Store) StatusCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(models.AllStatuses))
	for _, p := range s.byID {
		out[p.Status]++
	}
	return out
}

func (s *Store) Admin() models.AdminData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

func (s *Store) SetAdmin(ctx context.Context, admin models.AdminData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = admin
	return s.flushLocked(ctx)
}

// flushLocked mirrors the full state. Caller holds the write lock.
func (s *Store) flushLocked(ctx context.Context) error {
	snapshot := make([]*models.Parcel, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.byID[id])
	}
	if err := s.mirror.SaveSnapshot(ctx, snapshot, s.admin); err != nil {
		return errors.Wrap(err, "flush snapshot")
	}
	return nil
}

func (s *Store) publishStatusUpdated(ctx context.Context, p *models.Parcel, oldStatus string, at time.Time) {
	if s.events == nil {
		return
	}
	err := s.events.PublishStatusUpdated(ctx, messages.ParcelStatusUpdated{
		ParcelID:       p.ID,
		TrackingNumber: p.TrackingNumber,
		OldStatus:      oldStatus,
		NewStatus:      p.Status,
		ChangedAt:      at,
	})
	if err != nil {
		slog.Warn("status event publish failed", "parcel_id", p.ID, "error", err)
	}
}
