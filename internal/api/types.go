package api

// User is the authenticated account as reported by the backend.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
}

// TokenResponse is the credential exchange response from POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        *User  `json:"user,omitempty"`
}

// SessionKind identifies how a saved session is addressed on the backend.
type SessionKind string

const (
	// KindFilesystem sessions are stored as files and fetched with an extra
	// session_type query parameter.
	KindFilesystem SessionKind = "filesystem"
	// KindDatabase sessions live in the backend database and are fetched by a
	// plain lookup.
	KindDatabase SessionKind = "database"
)

// Session is a saved generation workflow record. The client only lists,
// fetches details of, and deletes sessions; they are created server-side.
type Session struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// SessionDetails is the full restore payload for a saved session.
type SessionDetails struct {
	Session    Session        `json:"session"`
	InputData  map[string]any `json:"input_data"`
	OutputData map[string]any `json:"output_data"`
	ImageFiles []string       `json:"image_files"`
}

// Project is a user project grouping sessions and shots.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Shot is one suggested camera framing.
type Shot struct {
	Name            string         `json:"name,omitempty"`
	ShotDescription string         `json:"shot_description"`
	Explanation     string         `json:"explanation,omitempty"`
	ImageURL        string         `json:"image_url,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// SuggestShotsRequest is the payload for POST /shots/suggest.
type SuggestShotsRequest struct {
	SceneDescription string `json:"scene_description"`
	NumShots         int    `json:"num_shots"`
	ModelName        string `json:"model_name"`
}

// SuggestShotsResponse carries suggested shots plus the session the backend
// saved them under, when it saved one.
type SuggestShotsResponse struct {
	Shots     []Shot `json:"shots"`
	SessionID string `json:"session_id,omitempty"`
}

// GeneratedImage is the result of an image generation call. Exactly one of
// ImageURL and ImageData is set depending on the endpoint.
type GeneratedImage struct {
	ImageURL  string `json:"image_url,omitempty"`
	ImageData string `json:"image_data,omitempty"`
}

// ImageFile is an in-memory reference image uploaded for analysis.
type ImageFile struct {
	Name string
	Data []byte
}

// ImageAnalysis is the per-image result of reference image analysis.
type ImageAnalysis struct {
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Error       string `json:"error,omitempty"`
}

// AnalyzeImagesResult aggregates per-image analyses with a batch summary.
// Failed images are reported inline; the workflow continues with the
// successful subset.
type AnalyzeImagesResult struct {
	Analyses []ImageAnalysis `json:"analyses"`
	Summary  string          `json:"summary,omitempty"`
}

// Succeeded returns the analyses that completed without error.
func (r *AnalyzeImagesResult) Succeeded() []ImageAnalysis {
	out := make([]ImageAnalysis, 0, len(r.Analyses))
	for _, a := range r.Analyses {
		if a.Error == "" {
			out = append(out, a)
		}
	}
	return out
}
