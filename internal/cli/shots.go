package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shotcraft/internal/api"
	"shotcraft/internal/workflow"
	"shotcraft/pkg/logger"
)

// ShotsSuggestCommand requests shot suggestions for a scene and optionally
// generates images for all of them.
func ShotsSuggestCommand(ctx context.Context, app *App, scene string, numShots int, model string, generateImages bool) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}
	if scene == "" {
		return fmt.Errorf("scene description is required")
	}
	if model == "" {
		model = app.Config.DefaultModel
	}

	list := workflow.NewShotList(app.Client, model)
	if err := list.Suggest(ctx, scene, numShots); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && api.IsRateLimited(apiErr) {
			return fmt.Errorf("%s", apiErr.Detail)
		}
		return err
	}

	printShots(list.Items())

	if !generateImages {
		return nil
	}

	// Generations are independent per shot; run them concurrently. Each one
	// only touches its own item.
	items := list.Items()
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			if err := list.GenerateImage(ctx, index); err != nil {
				logger.Warnf("shot %d: %v", index, err)
			}
		}(i)
	}
	wg.Wait()

	fmt.Println()
	printShots(list.Items())
	return nil
}

// ShotsGenerateImageCommand generates an image for a single shot description,
// optionally updating a saved session's shot in place.
func ShotsGenerateImageCommand(ctx context.Context, app *App, description, model, sessionID string, shotIndex int) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}
	if description == "" {
		return fmt.Errorf("shot description is required")
	}
	if model == "" {
		model = app.Config.DefaultModel
	}

	image, err := app.Client.GenerateShotImage(ctx, api.GenerateShotImageRequest{
		ShotDescription: description,
		ModelName:       model,
		SessionID:       sessionID,
		ShotIndex:       shotIndex,
		HasShotIndex:    sessionID != "",
	})
	if err != nil {
		return fmt.Errorf("failed to generate image: %w", err)
	}

	fmt.Println(image.ImageURL)
	return nil
}

func printShots(items []workflow.ShotItem) {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		status := ""
		switch {
		case item.Generating:
			status = "generating..."
		case item.GenerationError:
			status = errorStyle.Render("failed")
		case item.ImageURL != "":
			status = item.ImageURL
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i), item.Name, item.ShotDescription, status})
	}
	fmt.Print(renderTable([]string{"#", "NAME", "DESCRIPTION", "IMAGE"}, rows))
}
