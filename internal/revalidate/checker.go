package revalidate

import (
	"Trestle/internal/geometry"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Checker is the authoritative-confirmation boundary. The local engine and
// the remote service answer with the same shape, so a caller can use either
// result interchangeably while a confirmation is in flight.
type Checker interface {
	Check(ctx context.Context, req geometry.ValidateRequest) (geometry.ValidateResponse, error)
}

// LocalChecker runs the engine in-process. Both tiers call the same module,
// so there is no second copy of the algorithm to drift out of sync.
type LocalChecker struct {
	Bounds geometry.Bounds
}

func (c LocalChecker) Check(_ context.Context, req geometry.ValidateRequest) (geometry.ValidateResponse, error) {
	return c.Bounds.Evaluate(req), nil
}

// HTTPChecker posts the request to a remote validation endpoint.
type HTTPChecker struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *HTTPChecker) Check(ctx context.Context, req geometry.ValidateRequest) (geometry.ValidateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return geometry.ValidateResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/geometry/validate", bytes.NewReader(body))
	if err != nil {
		return geometry.ValidateResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return geometry.ValidateResponse{}, err
	}
	defer resp.Body.Close()

	// 400 still carries the full issue payload.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return geometry.ValidateResponse{}, fmt.Errorf("validator returned %s", resp.Status)
	}

	var out geometry.ValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return geometry.ValidateResponse{}, err
	}
	return out, nil
}
