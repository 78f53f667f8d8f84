package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/solstice-sh/pulse/internal/constants"
	"github.com/solstice-sh/pulse/internal/learning"
)

// Remote is the mirror endpoint client. All of its failures are
// recoverable: the local cache stays authoritative.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemote creates a remote mirror client.
func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: constants.PersistTimeout,
		},
	}
}

// Save mirrors the learning state to the remote cache.
func (r *Remote) Save(ctx context.Context, ls learning.LearningState) error {
	body, err := json.Marshal(ls)
	if err != nil {
		return fmt.Errorf("marshal learning state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/learning/save", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("http error %d", resp.StatusCode)
	}
	return nil
}

// Load fetches the remote learning state. Consulted only during
// cold-start bootstrap.
func (r *Remote) Load(ctx context.Context) (*learning.LearningState, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.baseURL+"/learning/load", nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http error %d", resp.StatusCode)
	}

	var ls learning.LearningState
	if err := json.NewDecoder(resp.Body).Decode(&ls); err != nil {
		return nil, fmt.Errorf("unmarshal learning state: %w", err)
	}
	return &ls, nil
}
