package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	stdsync "sync"

	"shotcraft/internal/api"
	clientsync "shotcraft/internal/sync"
	"shotcraft/pkg/logger"
)

// ShotAPI is the backend surface the shot list depends on.
type ShotAPI interface {
	SuggestShots(ctx context.Context, req api.SuggestShotsRequest) (*api.SuggestShotsResponse, error)
	GenerateShotImage(ctx context.Context, req api.GenerateShotImageRequest) (*api.GeneratedImage, error)
}

// ShotItem is one shot plus its local generation flags. The flags mirror the
// tracker; they exist so a rendered snapshot carries everything a view needs.
type ShotItem struct {
	api.Shot
	Generating      bool
	GenerationError bool
}

// ShotList is the shot-suggestion output list with per-item image generation.
//
// Generation for different shots runs independently; state is partitioned by
// index so concurrent generations never share a mutable cell. Per index, at
// most one outstanding generation is current: the tracker's sequence numbers
// make a response racing a newer request for the same shot a discard, not a
// last-write-wins.
type ShotList struct {
	client  ShotAPI
	tracker *clientsync.Tracker[int]

	mu        stdsync.Mutex
	sessionID string
	items     []ShotItem
	model     string
}

// NewShotList creates an empty shot list using the given default model.
func NewShotList(client ShotAPI, model string) *ShotList {
	return &ShotList{
		client:  client,
		tracker: clientsync.NewTracker[int](),
		model:   model,
	}
}

// Suggest replaces the list with fresh suggestions for a scene.
func (l *ShotList) Suggest(ctx context.Context, sceneDescription string, numShots int) error {
	resp, err := l.client.SuggestShots(ctx, api.SuggestShotsRequest{
		SceneDescription: sceneDescription,
		NumShots:         numShots,
		ModelName:        l.model,
	})
	if err != nil {
		return fmt.Errorf("suggest shots: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaceLocked(resp.Shots, resp.SessionID)
	return nil
}

// SetShots replaces the list directly (used by tests and session restore).
func (l *ShotList) SetShots(shots []api.Shot, sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.replaceLocked(shots, sessionID)
}

func (l *ShotList) replaceLocked(shots []api.Shot, sessionID string) {
	items := make([]ShotItem, len(shots))
	for i, s := range shots {
		items[i] = ShotItem{Shot: s}
	}
	l.items = items
	l.sessionID = sessionID
	l.tracker.Clear()
}

// GenerateImage generates an image for the shot at index. Only that shot's
// fields change; siblings are untouched. A failed generation sets the error
// flag but keeps any previously generated image URL.
func (l *ShotList) GenerateImage(ctx context.Context, index int) error {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return fmt.Errorf("no shot at index %d", index)
	}
	shot := l.items[index].Shot
	sessionID := l.sessionID
	model := l.model
	seq := l.tracker.Start(index)
	l.items[index].Generating = true
	l.items[index].GenerationError = false
	l.mu.Unlock()

	image, err := l.client.GenerateShotImage(ctx, api.GenerateShotImageRequest{
		ShotDescription: shot.ShotDescription,
		ModelName:       model,
		SessionID:       sessionID,
		ShotIndex:       index,
		HasShotIndex:    sessionID != "",
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if index >= len(l.items) {
		// The list was replaced while the call was in flight.
		return nil
	}
	if err != nil {
		if l.tracker.Fail(index, seq, err.Error()) {
			l.items[index].Generating = false
			l.items[index].GenerationError = true
		}
		return fmt.Errorf("generate image for shot %d: %w", index, err)
	}
	if !l.tracker.Succeed(index, seq) {
		logger.Debugf("discarding stale generation result for shot %d", index)
		return nil
	}
	l.items[index].Generating = false
	l.items[index].GenerationError = false
	l.items[index].ImageURL = image.ImageURL
	return nil
}

// Generating reports whether the shot at index has a generation in flight.
func (l *ShotList) Generating(index int) bool {
	return l.tracker.Running(index)
}

// Items returns a snapshot of the list in display order.
func (l *ShotList) Items() []ShotItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ShotItem, len(l.items))
	copy(out, l.items)
	return out
}

// SessionID returns the saved session backing this list, if any.
func (l *ShotList) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionID
}

// Restore populates the list from saved session details. All-or-nothing: on
// a malformed payload the list is left untouched and an error is returned.
func (l *ShotList) Restore(details *api.SessionDetails) error {
	shots, err := shotsFromDetails(details)
	if err != nil {
		return err
	}
	l.SetShots(shots, details.Session.ID)
	return nil
}

// Reset empties the list.
func (l *ShotList) Reset() {
	l.SetShots(nil, "")
}

// shotsFromDetails extracts the shot array from a session's output data.
func shotsFromDetails(details *api.SessionDetails) ([]api.Shot, error) {
	raw, ok := details.OutputData["shots"]
	if !ok {
		raw, ok = details.InputData["shots"]
	}
	if !ok {
		return nil, fmt.Errorf("session %s has no shots", details.Session.ID)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encode shots: %w", err)
	}
	var shots []api.Shot
	if err := json.Unmarshal(encoded, &shots); err != nil {
		return nil, fmt.Errorf("parse shots: %w", err)
	}
	return shots, nil
}
