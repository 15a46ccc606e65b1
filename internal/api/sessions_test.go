package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListSessionsScopesByProject(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/p1/sessions", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Session{{ID: "s1", Name: "scene one"}})
	}))

	sessions, err := client.ListSessions(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "s1", sessions[0].ID)
}

func TestListSessionsAccountWide(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Session{})
	}))

	sessions, err := client.ListSessions(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestSaveSessionPostsRecord(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sessions", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "scene one", payload["name"])

		_ = json.NewEncoder(w).Encode(Session{ID: "s1", Name: "scene one"})
	}))

	saved, err := client.SaveSession(context.Background(), map[string]any{"name": "scene one"})
	require.NoError(t, err)
	require.Equal(t, "s1", saved.ID)
}

func TestRenameSessionPutsNewName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/sessions/scene%20one", r.URL.EscapedPath())

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "scene two", payload["name"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.RenameSession(context.Background(), "scene one", "scene two"))
}

func TestDeleteSessionScopesByProject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		projectID string
		wantPath  string
	}{
		{name: "projectScoped", projectID: "p1", wantPath: "/projects/p1/sessions/scene"},
		{name: "accountWide", projectID: "", wantPath: "/sessions/scene"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				require.Equal(t, tt.wantPath, r.URL.Path)
				w.WriteHeader(http.StatusOK)
			}))

			require.NoError(t, client.DeleteSession(context.Background(), tt.projectID, "scene"))
		})
	}
}
