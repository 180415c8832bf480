package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotelnikov/spotlist/internal/common"
)

func TestHTTPClient_MergeSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/spots/merge", r.URL.Path)

		var req MergeSpotRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "list-1", req.ListID)
		assert.Empty(t, req.SpotID)

		_ = json.NewEncoder(w).Encode(MergeSpotResponse{SpotID: "spot-1"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	spotID, err := c.MergeSpot(context.Background(), MergeSpotRequest{ListID: "list-1", Name: "Cafe"})
	require.NoError(t, err)
	assert.Equal(t, "spot-1", spotID)
}

func TestHTTPClient_MergeSpotRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "name too long"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.MergeSpot(context.Background(), MergeSpotRequest{ListID: "list-1"})
	require.ErrorIs(t, err, common.ErrMergeRejected)
	assert.Contains(t, err.Error(), "name too long")
}

func TestHTTPClient_AddPhotoRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.AddPhoto(context.Background(), AddPhotoRequest{SpotID: "spot-1"})
	assert.ErrorIs(t, err, common.ErrMetadataRegistration)
}

func TestHTTPClient_DeletePhotoReturnsStoragePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/photos/photo-9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(DeletePhotoResponse{StoragePath: "list/spot/x.jpg"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	path, err := c.DeletePhoto(context.Background(), "photo-9")
	require.NoError(t, err)
	assert.Equal(t, "list/spot/x.jpg", path)
}

func TestHTTPClient_ServerUnreachable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	_, err := c.MergeSpot(context.Background(), MergeSpotRequest{ListID: "l"})
	assert.ErrorIs(t, err, common.ErrMergeRejected)
}
