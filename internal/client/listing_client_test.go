package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPListingClient(t *testing.T) {
	var gotPaths, gotKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.Method+" "+r.URL.Path)
		gotKeys = append(gotKeys, r.Header.Get("Idempotency-Key"))
		var body listingSignalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "esc-1", body.EscrowID)

		if r.URL.Path == "/offers/O-404/complete" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"offer not found"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewHTTPListingClient(srv.URL+"/", time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.MarkListingSold(ctx, "L1", "esc-1"))
	require.NoError(t, c.MarkOfferCompleted(ctx, "O-1", "esc-1"))

	err = c.MarkOfferCompleted(ctx, "O-404", "esc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offer not found")

	assert.Equal(t, []string{
		"POST /listings/L1/sold",
		"POST /offers/O-1/complete",
		"POST /offers/O-404/complete",
	}, gotPaths)
	assert.Equal(t, []string{
		"esc-1:listing-sold",
		"esc-1:offer-completed",
		"esc-1:offer-completed",
	}, gotKeys)
	assert.NotEqual(t, gotKeys[0], gotKeys[1])
}

func TestHTTPListingClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewHTTPListingClient(srv.URL, time.Second)
	require.NoError(t, err)
	err = c.MarkListingSold(context.Background(), "L1", "esc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewHTTPListingClientRequiresAddress(t *testing.T) {
	_, err := NewHTTPListingClient(" ", time.Second)
	assert.Error(t, err)
}
