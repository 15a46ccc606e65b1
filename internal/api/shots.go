package api

import (
	"context"
	"mime/multipart"
	"strconv"
)

// SuggestShots requests shot suggestions for a scene via POST /shots/suggest.
//
// Rate-limit rejections carry the backend's retry hint in the returned *Error.
func (c *Client) SuggestShots(ctx context.Context, req SuggestShotsRequest) (*SuggestShotsResponse, error) {
	var resp SuggestShotsResponse
	if err := c.postJSON(ctx, "/shots/suggest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateShotImageRequest is the input for GenerateShotImage. SessionID and
// ShotIndex are optional; when set, the backend updates the saved session's
// shot in place.
type GenerateShotImageRequest struct {
	ShotDescription string
	ModelName       string
	SessionID       string
	ShotIndex       int

	// HasShotIndex distinguishes index 0 from "no index".
	HasShotIndex bool
}

// GenerateShotImage generates an image for one shot via the multipart
// POST /shots/generate-image endpoint.
func (c *Client) GenerateShotImage(ctx context.Context, req GenerateShotImageRequest) (*GeneratedImage, error) {
	var image GeneratedImage
	err := c.postMultipart(ctx, "/shots/generate-image", func(mw *multipart.Writer) error {
		if err := mw.WriteField("shot_description", req.ShotDescription); err != nil {
			return err
		}
		if err := mw.WriteField("model_name", req.ModelName); err != nil {
			return err
		}
		if req.SessionID != "" {
			if err := mw.WriteField("session_id", req.SessionID); err != nil {
				return err
			}
		}
		if req.HasShotIndex {
			if err := mw.WriteField("shot_index", strconv.Itoa(req.ShotIndex)); err != nil {
				return err
			}
		}
		return nil
	}, &image)
	if err != nil {
		return nil, err
	}
	return &image, nil
}
