package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// AnalyzeImages uploads reference images for analysis via the multipart
// POST /api/analyze-images endpoint.
//
// Per-image failures are reported inline in the result rather than failing the
// batch; callers continue with the successful subset.
func (c *Client) AnalyzeImages(ctx context.Context, files []ImageFile) (*AnalyzeImagesResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no images to analyze")
	}

	var result AnalyzeImagesResult
	err := c.postMultipart(ctx, "/api/analyze-images", func(mw *multipart.Writer) error {
		for _, f := range files {
			part, err := mw.CreateFormFile("files", f.Name)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, bytes.NewReader(f.Data)); err != nil {
				return err
			}
		}
		return nil
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PreviewCombinedPrompt asks the backend to combine the user prompt with the
// reference image descriptions via POST /api/preview-combined-prompt.
func (c *Client) PreviewCombinedPrompt(ctx context.Context, userPrompt string, imageDescriptions []string) (string, error) {
	descriptions, err := json.Marshal(imageDescriptions)
	if err != nil {
		return "", fmt.Errorf("marshal image descriptions: %w", err)
	}

	var resp struct {
		CombinedPrompt string `json:"combined_prompt"`
	}
	err = c.postMultipart(ctx, "/api/preview-combined-prompt", func(mw *multipart.Writer) error {
		if err := mw.WriteField("user_prompt", userPrompt); err != nil {
			return err
		}
		return mw.WriteField("image_descriptions", string(descriptions))
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.CombinedPrompt, nil
}

// GenerateFusionImage generates the fused image from the final prompt via
// POST /fusion/generate-image.
func (c *Client) GenerateFusionImage(ctx context.Context, finalPrompt, projectID string) (*GeneratedImage, error) {
	var image GeneratedImage
	err := c.postMultipart(ctx, "/fusion/generate-image", func(mw *multipart.Writer) error {
		if err := mw.WriteField("final_prompt", finalPrompt); err != nil {
			return err
		}
		if projectID != "" {
			return mw.WriteField("project_id", projectID)
		}
		return nil
	}, &image)
	if err != nil {
		return nil, err
	}
	return &image, nil
}
