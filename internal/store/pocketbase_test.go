package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insanerask77/tienda-perfumes/internal/model"
)

func TestFindPerfumeByTitle_CaseInsensitiveMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/perfumes/records", r.URL.Path)
		assert.Equal(t, `title~"sauvage"`, r.URL.Query().Get("filter"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": 1, "perPage": 50, "totalItems": 2,
			"items": []map[string]any{
				{"id": "p1", "title": "Sauvage Elixir"},
				{"id": "p2", "title": "Sauvage"},
			},
		})
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	got, err := pb.FindPerfumeByTitle(context.Background(), "sauvage")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p2", got.ID)
	assert.Equal(t, "Sauvage", got.Title)
}

func TestFindPerfumeByTitle_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": 1, "perPage": 50, "totalItems": 0, "items": []any{},
		})
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	got, err := pb.FindPerfumeByTitle(context.Background(), "Nonexistent")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindPerfumeByTitle_EscapesQuotes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `title~"K by Dolce \"Special\""`, r.URL.Query().Get("filter"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	_, err := pb.FindPerfumeByTitle(context.Background(), `K by Dolce "Special"`)
	require.NoError(t, err)
}

func TestFindPerfumeByTitle_BackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	_, err := pb.FindPerfumeByTitle(context.Background(), "Eros")

	require.Error(t, err)
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
}

func TestCreatePerfume_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/collections/perfumes/records", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var draft model.PerfumeDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "Sauvage", draft.Title)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "p1",
			"title":         draft.Title,
			"description":   draft.Description,
			"original_link": draft.OriginalLink,
			"thumbnail":     draft.Thumbnail,
		})
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	got, err := pb.CreatePerfume(context.Background(), model.PerfumeDraft{
		Title:        "Sauvage",
		Description:  "d",
		OriginalLink: "https://x/sauvage",
		Thumbnail:    "t.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "Sauvage", got.Title)
}

func TestCreatePerfume_Conflict(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"message":"Failed to create record.","data":{"title":{"code":"validation_not_unique","message":"Value must be unique."}}}`))
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	_, err := pb.CreatePerfume(context.Background(), model.PerfumeDraft{Title: "Sauvage"})

	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestCreatePerfume_OtherBadRequestIsStoreError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"message":"Failed to create record.","data":{"title":{"code":"validation_required"}}}`))
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	_, err := pb.CreatePerfume(context.Background(), model.PerfumeDraft{})

	require.Error(t, err)
	assert.False(t, IsConflict(err))
	var serr *StoreError
	assert.ErrorAs(t, err, &serr)
}

func TestCreateEquivalence_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/equivalencias/records", r.URL.Path)

		var rec model.Equivalence
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "p1", rec.PerfumeID)
		assert.Equal(t, "Dupe A", rec.Title)
		assert.Equal(t, "10 € – 12 €", rec.Price)

		rec.ID = "e1"
		_ = json.NewEncoder(w).Encode(rec)
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	got, err := pb.CreateEquivalence(context.Background(), "p1", model.EquivalenceDraft{
		Title: "Dupe A",
		Store: "StoreA",
		Price: "10 € – 12 €",
	})

	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "p1", got.PerfumeID)
}

func TestCreateEquivalence_BackendFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	_, err := pb.CreateEquivalence(context.Background(), "p1", model.EquivalenceDraft{Title: "X"})

	require.Error(t, err)
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("perPage"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL)
	require.NoError(t, pb.Health(context.Background()))
}

func TestHealth_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(nil)
	srv.Close() // closed immediately: connection refused

	pb := NewPocketBase(srv.URL)
	require.Error(t, pb.Health(context.Background()))
}

func TestWithToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "admin-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))
	defer srv.Close()

	pb := NewPocketBase(srv.URL, WithToken("admin-token"))
	require.NoError(t, pb.Health(context.Background()))
}
