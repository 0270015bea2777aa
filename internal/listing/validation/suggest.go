package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Suggester enumerates the admissible values of a dependent field given the
// current submission values of its declared dependencies. Implementations are
// external collaborators keyed by the schema's url property.
type Suggester interface {
	Suggest(ctx context.Context, dependencies map[string]string) ([]string, error)
}

// SuggesterRegistry resolves a schema url key to its provider.
type SuggesterRegistry struct {
	providers map[string]Suggester
}

func NewSuggesterRegistry() *SuggesterRegistry {
	return &SuggesterRegistry{providers: make(map[string]Suggester)}
}

func (r *SuggesterRegistry) Register(urlKey string, s Suggester) {
	r.providers[urlKey] = s
}

// Suggest calls the provider registered for urlKey and returns its values as
// a membership set.
func (r *SuggesterRegistry) Suggest(ctx context.Context, urlKey string, dependencies map[string]string) (map[string]struct{}, error) {
	provider, ok := r.providers[urlKey]
	if !ok {
		return nil, fmt.Errorf("no suggestion provider registered for %q", urlKey)
	}
	values, err := provider.Suggest(ctx, dependencies)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set, nil
}

// QuarterSuggester enumerates construction hand-over quarters relative to the
// current date: the remaining quarters of this year, all of next year, and an
// open-ended tail.
type QuarterSuggester struct {
	Now func() time.Time
}

func NewQuarterSuggester() *QuarterSuggester {
	return &QuarterSuggester{Now: time.Now}
}

func (q *QuarterSuggester) Suggest(_ context.Context, _ map[string]string) ([]string, error) {
	now := q.Now().UTC()
	year := now.Year()
	quarter := (int(now.Month()) + 2) / 3

	values := []string{"Ready to move in"}
	for i := quarter; i <= 4; i++ {
		values = append(values, fmt.Sprintf("Q%d %d", i, year))
	}
	for i := 1; i <= 4; i++ {
		values = append(values, fmt.Sprintf("Q%d %d", i, year+1))
	}
	values = append(values, fmt.Sprintf("%d or later", year+2))
	return values, nil
}

// HTTPSuggester asks a remote directory (e.g. the vehicle catalog) for the
// admissible values of a field given its dependency context.
type HTTPSuggester struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSuggester(endpoint string, timeout time.Duration) *HTTPSuggester {
	return &HTTPSuggester{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type suggestionResponse struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func (h *HTTPSuggester) Suggest(ctx context.Context, dependencies map[string]string) ([]string, error) {
	payload, err := json.Marshal(map[string]any{"dependencies": dependencies})
	if err != nil {
		return nil, fmt.Errorf("marshal suggestion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build suggestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion provider returned status %d", resp.StatusCode)
	}

	var body suggestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode suggestion response: %w", err)
	}
	return body.Values, nil
}
