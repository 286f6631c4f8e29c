package settings

import (
	"context"
	"fmt"
	"strings"

	"horse.fit/glossa/internal/db"
)

// DefaultModel is used until an admin picks one.
const DefaultModel = "gpt-4.1-mini"

// SupportedModels are the models an admin may select.
var SupportedModels = []string{"gpt-4.1-mini", "gpt-4.1-nano"}

// View is what admin surfaces see. The API key never leaves the store in
// clear; only its masked form and a configured flag do.
type View struct {
	APIKeyMasked string   `json:"api_key_masked"`
	HasAPIKey    bool     `json:"has_api_key"`
	Model        string   `json:"model"`
	Models       []string `json:"models"`
}

// UpdateParams carries an admin settings change. A nil APIKey leaves the
// stored key alone; a pointer to the empty string clears it.
type UpdateParams struct {
	APIKey *string
	Model  string
}

// ErrUnsupportedModel rejects models outside SupportedModels.
type ErrUnsupportedModel struct {
	Model string
}

func (e *ErrUnsupportedModel) Error() string {
	return fmt.Sprintf("model %q is not supported", e.Model)
}

// Store keeps the single service settings row in postgres.
type Store struct {
	pool *db.Pool
}

func NewStore(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the admin view with the key masked.
func (s *Store) Get(ctx context.Context) (View, error) {
	apiKey, model, err := s.load(ctx)
	if err != nil {
		return View{}, err
	}
	return View{
		APIKeyMasked: maskKey(apiKey),
		HasAPIKey:    apiKey != "",
		Model:        model,
		Models:       append([]string(nil), SupportedModels...),
	}, nil
}

// Update applies an admin change and returns the fresh view.
func (s *Store) Update(ctx context.Context, params UpdateParams) (View, error) {
	apiKey, model, err := s.load(ctx)
	if err != nil {
		return View{}, err
	}

	if params.APIKey != nil {
		apiKey = strings.TrimSpace(*params.APIKey)
	}
	if trimmed := strings.TrimSpace(params.Model); trimmed != "" {
		if !isSupportedModel(trimmed) {
			return View{}, &ErrUnsupportedModel{Model: trimmed}
		}
		model = trimmed
	}

	const q = `
UPDATE glossa.settings
SET open_ai_key = $1,
    open_ai_model = $2,
    updated_at = now()
WHERE id = 1
`
	if _, err := s.pool.Exec(ctx, q, apiKey, model); err != nil {
		return View{}, fmt.Errorf("update settings: %w", err)
	}

	return View{
		APIKeyMasked: maskKey(apiKey),
		HasAPIKey:    apiKey != "",
		Model:        model,
		Models:       append([]string(nil), SupportedModels...),
	}, nil
}

// OpenAICredentials returns the clear key and model for outbound API calls.
// An empty key means the service is unconfigured; that is not an error here,
// the client decides what to do about it.
func (s *Store) OpenAICredentials(ctx context.Context) (string, string, error) {
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (string, string, error) {
	if s == nil || s.pool == nil {
		return "", "", fmt.Errorf("settings store is not initialized")
	}

	const seed = `
INSERT INTO glossa.settings (id, open_ai_key, open_ai_model, updated_at)
VALUES (1, '', $1, now())
ON CONFLICT (id) DO NOTHING
`
	if _, err := s.pool.Exec(ctx, seed, DefaultModel); err != nil {
		return "", "", fmt.Errorf("seed settings row: %w", err)
	}

	const q = `
SELECT s.open_ai_key, s.open_ai_model
FROM glossa.settings s
WHERE s.id = 1
`
	var apiKey, model string
	if err := s.pool.QueryRow(ctx, q).Scan(&apiKey, &model); err != nil {
		return "", "", fmt.Errorf("read settings: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return strings.TrimSpace(apiKey), model, nil
}

func isSupportedModel(model string) bool {
	for _, supported := range SupportedModels {
		if model == supported {
			return true
		}
	}
	return false
}

// maskKey keeps the prefix and the last four characters visible so an admin
// can tell keys apart without ever seeing the full value again.
func maskKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 7 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:3] + strings.Repeat("*", len(apiKey)-7) + apiKey[len(apiKey)-4:]
}
