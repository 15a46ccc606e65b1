package api

import (
	"context"
	"net/http"
	"net/url"

	"shotcraft/pkg/logger"
)

// ListSessions lists saved sessions. With a project ID the project-scoped
// endpoint is used; otherwise the account-wide one.
func (c *Client) ListSessions(ctx context.Context, projectID string) ([]Session, error) {
	path := "/sessions"
	if projectID != "" {
		path = "/projects/" + url.PathEscape(projectID) + "/sessions"
	}
	var sessions []Session
	if err := c.getJSON(ctx, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSessionDetails fetches the restore payload for one session using the
// given addressing kind.
func (c *Client) GetSessionDetails(ctx context.Context, sessionID string, kind SessionKind) (*SessionDetails, error) {
	query := url.Values{}
	if kind == KindFilesystem {
		query.Set("session_type", string(KindFilesystem))
	}
	var details SessionDetails
	if err := c.getJSON(ctx, "/sessions/"+url.PathEscape(sessionID), query, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ResolveSessionDetails fetches session details without a known kind.
//
// Sessions saved by older backends are filesystem-addressed while newer ones
// live in the database. The lookup is an explicit two-step fallback: try the
// filesystem addressing first, then retry once as a database session when the
// first attempt reports not-found. Unauthorized and transport errors are
// surfaced immediately, never retried with the alternate scheme.
func (c *Client) ResolveSessionDetails(ctx context.Context, sessionID string) (*SessionDetails, SessionKind, error) {
	details, err := c.GetSessionDetails(ctx, sessionID, KindFilesystem)
	if err == nil {
		return details, KindFilesystem, nil
	}
	if !retriableWithAlternateKind(err) {
		return nil, "", err
	}

	logger.Debugf("session %s not found as filesystem session, retrying as database session", sessionID)
	details, err = c.GetSessionDetails(ctx, sessionID, KindDatabase)
	if err != nil {
		return nil, "", err
	}
	return details, KindDatabase, nil
}

// retriableWithAlternateKind reports whether a session lookup failure should
// trigger the alternate addressing scheme.
func retriableWithAlternateKind(err error) bool {
	return IsNotFound(err)
}

// DeleteSession deletes a saved session. Callers reconcile their local list
// state afterward; the response body carries no useful payload.
func (c *Client) DeleteSession(ctx context.Context, projectID, sessionName string) error {
	path := "/sessions/" + url.PathEscape(sessionName)
	if projectID != "" {
		path = "/projects/" + url.PathEscape(projectID) + "/sessions/" + url.PathEscape(sessionName)
	}
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, "", nil)
	return err
}

// SaveSession persists a session record via POST /sessions.
func (c *Client) SaveSession(ctx context.Context, session map[string]any) (*Session, error) {
	var saved Session
	if err := c.postJSON(ctx, "/sessions", session, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// RenameSession renames a saved session via PUT /sessions/{name}.
func (c *Client) RenameSession(ctx context.Context, sessionName, newName string) error {
	payload := map[string]string{"name": newName}
	body, err := encodeJSONBody(payload)
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, http.MethodPut, "/sessions/"+url.PathEscape(sessionName), nil, "application/json", body)
	return err
}
