package promote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromote(t *testing.T) {
	var got promoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Promote(context.Background(), "reg-42", "city-tour")
	require.NoError(t, err)
	require.Equal(t, promoteRequest{RegistrantID: "reg-42", Activity: "city-tour"}, got)
}

func TestPromoteBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "activity is full", http.StatusConflict)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Promote(context.Background(), "reg-42", "city-tour")
	require.Error(t, err)
	require.Contains(t, err.Error(), "activity is full")
}
