package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"shotcraft/internal/api"
	"shotcraft/internal/workflow"
	"shotcraft/pkg/logger"
)

// FusionAnalyzeCommand uploads reference images and prints their analyses.
func FusionAnalyzeCommand(ctx context.Context, app *App, paths []string) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	ws := workflow.NewFusionWorkspace(app.Client)
	files, err := readImageFiles(paths)
	if err != nil {
		return err
	}
	ws.AddReferences(files...)

	if err := ws.Analyze(ctx); err != nil {
		return err
	}

	fmt.Println(ws.Summary())
	for _, a := range ws.Analyses() {
		if a.Error != "" {
			fmt.Printf("%s: %s\n", a.Filename, errorStyle.Render(a.Error))
			continue
		}
		fmt.Printf("%s: %s\n", a.Filename, a.Description)
	}
	return nil
}

// FusionRunCommand runs the full fusion workflow: analyze the reference
// images, combine the prompt, and generate the fused image.
func FusionRunCommand(ctx context.Context, app *App, paths []string, prompt, projectID, outPath string) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}
	if prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	if len(paths) == 0 {
		return fmt.Errorf("at least one reference image is required")
	}

	ws := workflow.NewFusionWorkspace(app.Client)
	files, err := readImageFiles(paths)
	if err != nil {
		return err
	}
	ws.AddReferences(files...)
	ws.SetPrompt(prompt)

	logger.Infof("Analyzing %d reference images...", len(files))
	if err := ws.Analyze(ctx); err != nil {
		return err
	}
	logger.Infof("%s", ws.Summary())

	combined, err := ws.Preview(ctx)
	if err != nil {
		return err
	}
	logger.Infof("Combined prompt: %s", combined)

	image, err := ws.Generate(ctx, projectID)
	if err != nil {
		return err
	}

	return writeGeneratedImage(image, outPath)
}

func readImageFiles(paths []string) ([]api.ImageFile, error) {
	files := make([]api.ImageFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, api.ImageFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

func writeGeneratedImage(image *api.GeneratedImage, outPath string) error {
	switch {
	case image.ImageURL != "":
		fmt.Println(image.ImageURL)
		return nil
	case image.ImageData != "":
		if outPath == "" {
			outPath = "fusion-image.png"
		}
		data, err := decodeImageData(image.ImageData)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		logger.Infof("Saved %s", outPath)
		return nil
	default:
		return fmt.Errorf("backend returned no image")
	}
}
