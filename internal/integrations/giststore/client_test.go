package giststore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BearBump/ParcelDesk/internal/apperr"
)

func TestClient_Save_createsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/gists", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var doc gistDocument
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		require.Equal(t, `{"appName":"x"}`, doc.Files["parceldesk-backup.json"].Content)
		require.False(t, doc.Public)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc123"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	id, err := c.Save(context.Background(), "", []byte(`{"appName":"x"}`))
	require.NoError(t, err)
	require.Equal(t, "abc123", id)
}

func TestClient_Save_patchesExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/gists/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"abc123"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	id, err := c.Save(context.Background(), "abc123", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, "abc123", id)
}

func TestClient_Save_httpError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad")
	_, err := c.Save(context.Background(), "", []byte(`{}`))
	var te *apperr.TransportError
	require.ErrorAs(t, err, &te)
}

func TestClient_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/gists/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"abc123","files":{"parceldesk-backup.json":{"content":"{\"appName\":\"x\"}"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	b, err := c.Load(context.Background(), "abc123")
	require.NoError(t, err)
	require.JSONEq(t, `{"appName":"x"}`, string(b))
}

func TestClient_Load_missingFileAndNoID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abc123","files":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	var te *apperr.TransportError
	_, err := c.Load(context.Background(), "abc123")
	require.ErrorAs(t, err, &te)

	_, err = c.Load(context.Background(), "")
	require.ErrorAs(t, err, &te)
}

func TestClient_singleInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"id":"abc123"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.Save(context.Background(), "", []byte(`{}`))
		require.NoError(t, err)
	}()

	// Wait until the first call has taken the flag.
	for !c.inFlight.Load() {
		time.Sleep(time.Millisecond)
	}
	_, err := c.Save(context.Background(), "", []byte(`{}`))
	require.ErrorIs(t, err, ErrSyncInFlight)
	_, err = c.Load(context.Background(), "abc123")
	require.ErrorIs(t, err, ErrSyncInFlight)

	close(release)
	wg.Wait()
}
