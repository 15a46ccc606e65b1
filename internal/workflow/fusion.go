package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shotcraft/internal/api"
	"shotcraft/pkg/logger"
)

// FusionAPI is the backend surface the fusion workspace depends on.
type FusionAPI interface {
	AnalyzeImages(ctx context.Context, files []api.ImageFile) (*api.AnalyzeImagesResult, error)
	PreviewCombinedPrompt(ctx context.Context, userPrompt string, imageDescriptions []string) (string, error)
	GenerateFusionImage(ctx context.Context, finalPrompt, projectID string) (*api.GeneratedImage, error)
}

// FusionWorkspace is the client-side aggregate for one image-fusion workflow:
// reference images, their analyses, the user prompt, the combined final
// prompt and the generated images.
//
// The stages depend on each other in that order, so changing the reference
// set (add or remove) invalidates everything downstream. Removing an index
// that is not present is a no-op.
type FusionWorkspace struct {
	client FusionAPI

	mu        sync.Mutex
	refs      []api.ImageFile
	analyses  []api.ImageAnalysis
	summary   string
	prompt    string
	final     string
	generated []api.GeneratedImage
}

// NewFusionWorkspace creates an empty workspace.
func NewFusionWorkspace(client FusionAPI) *FusionWorkspace {
	return &FusionWorkspace{client: client}
}

// AddReferences appends reference images and invalidates all downstream state.
func (w *FusionWorkspace) AddReferences(files ...api.ImageFile) {
	if len(files) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs = append(w.refs, files...)
	w.invalidateLocked()
}

// RemoveReference removes the reference image at index and invalidates all
// downstream state. Out-of-range indices are ignored; repeated removes of an
// already-absent item are no-ops.
func (w *FusionWorkspace) RemoveReference(index int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.refs) {
		return
	}
	w.refs = append(w.refs[:index], w.refs[index+1:]...)
	w.invalidateLocked()
}

// invalidateLocked resets every stage derived from the reference set.
func (w *FusionWorkspace) invalidateLocked() {
	w.analyses = nil
	w.summary = ""
	w.prompt = ""
	w.final = ""
	w.generated = nil
}

// SetPrompt sets the user prompt. Changing the prompt drops the derived final
// prompt but keeps analyses, which depend only on the images.
func (w *FusionWorkspace) SetPrompt(prompt string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prompt = prompt
	w.final = ""
}

// Analyze uploads the reference images for analysis. Per-image failures do
// not abort the batch: the failed entries stay visible, a summary counts the
// split, and downstream stages continue with the successful subset.
func (w *FusionWorkspace) Analyze(ctx context.Context) error {
	w.mu.Lock()
	files := make([]api.ImageFile, len(w.refs))
	copy(files, w.refs)
	w.mu.Unlock()

	if len(files) == 0 {
		return fmt.Errorf("no reference images to analyze")
	}

	result, err := w.client.AnalyzeImages(ctx, files)
	if err != nil {
		return fmt.Errorf("analyze images: %w", err)
	}

	succeeded := len(result.Succeeded())
	summary := result.Summary
	if summary == "" {
		summary = fmt.Sprintf("%d of %d images analyzed", succeeded, len(result.Analyses))
	}
	if succeeded < len(result.Analyses) {
		logger.Warnf("image analysis partially failed: %s", summary)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.analyses = result.Analyses
	w.summary = summary
	return nil
}

// Preview combines the user prompt with the successful analyses into the
// final prompt.
func (w *FusionWorkspace) Preview(ctx context.Context) (string, error) {
	w.mu.Lock()
	prompt := w.prompt
	descriptions := make([]string, 0, len(w.analyses))
	for _, a := range w.analyses {
		if a.Error == "" {
			descriptions = append(descriptions, a.Description)
		}
	}
	w.mu.Unlock()

	if prompt == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	if len(descriptions) == 0 {
		return "", fmt.Errorf("no analyzed reference images")
	}

	combined, err := w.client.PreviewCombinedPrompt(ctx, prompt, descriptions)
	if err != nil {
		return "", fmt.Errorf("preview combined prompt: %w", err)
	}

	w.mu.Lock()
	w.final = combined
	w.mu.Unlock()
	return combined, nil
}

// Generate produces a fused image from the final prompt and appends it to the
// generated set.
func (w *FusionWorkspace) Generate(ctx context.Context, projectID string) (*api.GeneratedImage, error) {
	w.mu.Lock()
	final := w.final
	w.mu.Unlock()
	if final == "" {
		return nil, fmt.Errorf("no final prompt; run preview first")
	}

	image, err := w.client.GenerateFusionImage(ctx, final, projectID)
	if err != nil {
		return nil, fmt.Errorf("generate fusion image: %w", err)
	}

	w.mu.Lock()
	w.generated = append(w.generated, *image)
	w.mu.Unlock()
	return image, nil
}

// References returns the reference image names in order.
func (w *FusionWorkspace) References() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, len(w.refs))
	for i, f := range w.refs {
		names[i] = f.Name
	}
	return names
}

// Analyses returns a snapshot of the per-image analyses.
func (w *FusionWorkspace) Analyses() []api.ImageAnalysis {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]api.ImageAnalysis, len(w.analyses))
	copy(out, w.analyses)
	return out
}

// Summary returns the analysis batch summary.
func (w *FusionWorkspace) Summary() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

// Prompt returns the user prompt.
func (w *FusionWorkspace) Prompt() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prompt
}

// FinalPrompt returns the combined prompt, if previewed.
func (w *FusionWorkspace) FinalPrompt() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.final
}

// Generated returns a snapshot of the generated images.
func (w *FusionWorkspace) Generated() []api.GeneratedImage {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]api.GeneratedImage, len(w.generated))
	copy(out, w.generated)
	return out
}

// fusionRestorePayload is the subset of saved session data the workspace can
// rebuild itself from.
type fusionRestorePayload struct {
	Prompt          string               `json:"prompt"`
	FinalPrompt     string               `json:"final_prompt"`
	Analyses        []api.ImageAnalysis  `json:"analyses"`
	GeneratedImages []api.GeneratedImage `json:"generated_images"`
}

// Restore rebuilds the workspace from saved session details. All-or-nothing:
// the payload is fully decoded before any field is assigned, so a malformed
// session leaves the workspace exactly as it was.
func (w *FusionWorkspace) Restore(details *api.SessionDetails) error {
	merged := map[string]any{}
	for k, v := range details.InputData {
		merged[k] = v
	}
	for k, v := range details.OutputData {
		merged[k] = v
	}
	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("re-encode session data: %w", err)
	}
	var payload fusionRestorePayload
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("parse session data: %w", err)
	}

	refs := make([]api.ImageFile, 0, len(details.ImageFiles))
	for _, name := range details.ImageFiles {
		// Server-side images are restored by name only; the bytes stay remote.
		refs = append(refs, api.ImageFile{Name: name})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs = refs
	w.analyses = payload.Analyses
	w.summary = ""
	w.prompt = payload.Prompt
	w.final = payload.FinalPrompt
	w.generated = payload.GeneratedImages
	return nil
}

// Reset returns the workspace to empty.
func (w *FusionWorkspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs = nil
	w.invalidateLocked()
}
