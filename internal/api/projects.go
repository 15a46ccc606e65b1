package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListProjects lists the account's projects via GET /projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.getJSON(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project via GET /projects/{id}.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := c.getJSON(ctx, "/projects/"+url.PathEscape(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a project via POST /projects.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	payload := map[string]string{
		"name":        name,
		"description": description,
	}
	var project Project
	if err := c.postJSON(ctx, "/projects", payload, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project via DELETE /projects/{id}.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, "", nil)
	return err
}
