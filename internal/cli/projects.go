package cli

import (
	"context"
	"fmt"

	"shotcraft/pkg/logger"
)

// ProjectsListCommand prints the account's projects.
func ProjectsListCommand(ctx context.Context, app *App) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	projects, err := app.Client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Println("No projects")
		return nil
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.ID, p.Name, p.Description, p.CreatedAt})
	}
	fmt.Print(renderTable([]string{"ID", "NAME", "DESCRIPTION", "CREATED"}, rows))
	return nil
}

// ProjectsCreateCommand creates a project.
func ProjectsCreateCommand(ctx context.Context, app *App, name, description string) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("project name is required")
	}

	project, err := app.Client.CreateProject(ctx, name, description)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	logger.Infof("Created project %s (%s)", project.Name, project.ID)
	return nil
}

// ProjectsDeleteCommand deletes a project after confirmation.
func ProjectsDeleteCommand(ctx context.Context, app *App, projectID string, skipConfirm bool) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	if !skipConfirm {
		ok, err := confirm(fmt.Sprintf("Delete project %s and all its sessions?", projectID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := app.Client.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	logger.Infof("Deleted project %s", projectID)
	return nil
}
