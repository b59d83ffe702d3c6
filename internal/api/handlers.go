// Package api exposes the dashboard's JSON surface plus the public tracking
// lookup over chi.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/ParcelDesk/internal/models"
	"github.com/BearBump/ParcelDesk/internal/services/admin"
	"github.com/BearBump/ParcelDesk/internal/services/analytics"
	"github.com/BearBump/ParcelDesk/internal/services/backup"
	"github.com/BearBump/ParcelDesk/internal/services/exporter"
	"github.com/BearBump/ParcelDesk/internal/services/importer"
	"github.com/BearBump/ParcelDesk/internal/services/parcels"
	"github.com/BearBump/ParcelDesk/internal/services/query"
)

// Mobile numbers are validated at the entry form boundary only: imports and
// restores carry whatever the source data has.
var mobileRe = regexp.MustCompile(`^[0-9]{10}$`)

// RemoteStore is what the sync endpoints need from the gist client.
type RemoteStore interface {
	Save(ctx context.Context, documentID string, payload []byte) (string, error)
	Load(ctx context.Context, documentID string) ([]byte, error)
}

type Handlers struct {
	store    *parcels.Store
	adminSvc *admin.Service
	backups  *backup.Engine
	remote   RemoteStore
	pageSize int

	mu         sync.Mutex
	documentID string // remote backup document, created lazily on first save
}

func NewHandlers(store *parcels.Store, adminSvc *admin.Service, backups *backup.Engine,
	remote RemoteStore, pageSize int, documentID string) *Handlers {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &Handlers{
		store:      store,
		adminSvc:   adminSvc,
		backups:    backups,
		remote:     remote,
		pageSize:   pageSize,
		documentID: documentID,
	}
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	token, err := h.adminSvc.Authenticate(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"name":  h.adminSvc.Profile().Name,
	})
}

// TrackParcel is the public lookup: exact tracking number, case insensitive.
func (h *Handlers) TrackParcel(w http.ResponseWriter, r *http.Request) {
	trk := chi.URLParam(r, "trackingNumber")
	p, ok := h.store.FindByTrackingNumber(trk)
	if !ok {
		writeError(w, http.StatusNotFound, "parcel not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trackingNumber": p.TrackingNumber,
		"status":         p.Status,
		"statusHistory":  p.StatusHistory,
	})
}

func listOptions(r *http.Request) query.Options {
	q := r.URL.Query()
	opts := query.Options{
		Status: q.Get("status"),
		Search: q.Get("q"),
	}
	if v := q.Get("start"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			opts.StartDate = t
		}
	}
	if v := q.Get("end"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			opts.EndDate = t
		}
	}
	return opts
}

func (h *Handlers) ListParcels(w http.ResponseWriter, r *http.Request) {
	filtered := query.Apply(h.store.List(), listOptions(r))

	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"parcels":    query.Page(filtered, page, h.pageSize),
		"total":      len(filtered),
		"page":       page,
		"totalPages": query.TotalPages(len(filtered), h.pageSize),
		"pageSize":   h.pageSize,
	})
}

func checkMobile(mobile string) error {
	if !mobileRe.MatchString(mobile) {
		return fmt.Errorf("mobile must be exactly 10 digits")
	}
	return nil
}

func (h *Handlers) CreateParcel(w http.ResponseWriter, r *http.Request) {
	var in models.ParcelCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := checkMobile(in.CustomerMobile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.store.Create(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func parcelID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handlers) UpdateParcel(w http.ResponseWriter, r *http.Request) {
	id, err := parcelID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid parcel id")
		return
	}
	var in models.ParcelUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := checkMobile(in.CustomerMobile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteParcel is irreversible; the UI asks for confirmation before calling.
func (h *Handlers) DeleteParcel(w http.ResponseWriter, r *http.Request) {
	id, err := parcelID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid parcel id")
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parcelID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid parcel id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	p, err := h.store.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) BulkSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []uint64 `json:"ids"`
		Status string   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.store.BulkSetStatus(r.Context(), req.IDs, req.Status); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportParcels takes a raw CSV body. The parse is all-or-nothing; de-dup
// against the live store happens in BulkCreate.
func (h *Handlers) ImportParcels(w http.ResponseWriter, r *http.Request) {
	records, err := importer.Parse(r.Body)
	if err != nil {
		respondError(w, err)
		return
	}

	res, err := h.store.BulkCreate(r.Context(), records)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) ExportParcels(w http.ResponseWriter, r *http.Request) {
	filtered := query.Apply(h.store.List(), listOptions(r))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=parcels-export-%s.csv", time.Now().UTC().Format("2006-01-02")))
	if err := exporter.WriteCSV(w, filtered); err != nil {
		respondError(w, err)
	}
}

func (h *Handlers) Analytics(w http.ResponseWriter, r *http.Request) {
	buckets, err := analytics.Aggregate(
		h.store.List(),
		analytics.Period(r.URL.Query().Get("period")),
		analytics.Metric(r.URL.Query().Get("metric")),
	)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"buckets": buckets})
}

// Stats feeds the dashboard cards: one count per status plus the total.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	counts := h.store.StatusCounts()
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"counts": counts,
		"total":  total,
	})
}

func (h *Handlers) ExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := h.backups.Export()
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=parceldesk-backup-%s.json", time.Now().UTC().Format("2006-01-02")))
	_, _ = w.Write(data)
}

func (h *Handlers) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := h.backups.Restore(r.Context(), data); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SyncSave(w http.ResponseWriter, r *http.Request) {
	data, err := h.backups.Export()
	if err != nil {
		respondError(w, err)
		return
	}

	h.mu.Lock()
	docID := h.documentID
	h.mu.Unlock()

	newID, err := h.remote.Save(r.Context(), docID, data)
	if err != nil {
		respondError(w, err)
		return
	}

	h.mu.Lock()
	h.documentID = newID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"documentId": newID})
}

func (h *Handlers) SyncLoad(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	docID := h.documentID
	h.mu.Unlock()

	data, err := h.remote.Load(r.Context(), docID)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.backups.Restore(r.Context(), data); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AdminProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": h.adminSvc.Profile().Name})
}

func (h *Handlers) UpdateAdminName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.adminSvc.UpdateName(r.Context(), req.Name); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.adminSvc.ChangePassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := h.adminSvc.ResetPassword(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
