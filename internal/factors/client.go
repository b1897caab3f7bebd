package factors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ghgreport/internal"
	"ghgreport/internal/config"
)

// Client pulls published emission-factor datasets from a configured API.
// Factor registries publish periodic revisions; sync keeps the local table
// aligned without shipping a new binary.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type datasetPayload struct {
	Factors   []map[string]any `json:"factors"`
	Revision  *string          `json:"revision"`
	Published *string          `json:"published"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FactorTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.FactorRateLimitRPS),
	}
}

// GetDataset fetches the current factor dataset revision.
func (c *Client) GetDataset(ctx context.Context) ([]internal.EmissionFactor, string, error) {
	body, err := c.fetchJSON(ctx, "factors/current", map[string]string{})
	if err != nil {
		return nil, "", err
	}

	var payload datasetPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", err
	}

	out := make([]internal.EmissionFactor, 0, len(payload.Factors))
	for _, raw := range payload.Factors {
		factor, err := toRemoteFactor(raw)
		if err != nil {
			continue
		}
		factor.ID = len(out) + 1
		out = append(out, factor)
	}
	if len(out) == 0 {
		return nil, "", ErrEmptyTable
	}

	revision := ""
	if payload.Revision != nil {
		revision = *payload.Revision
	}
	return out, revision, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.FactorAPIBaseURL) == "" {
		return nil, errors.New("missing FACTOR_API_BASE_URL")
	}

	baseURL := strings.TrimRight(c.cfg.FactorAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		if c.cfg.FactorAPIToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.FactorAPIToken)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("factor api status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("factor api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("factor api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("factor api request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toRemoteFactor(raw map[string]any) (internal.EmissionFactor, error) {
	source, _ := raw["source"].(string)
	source = strings.TrimSpace(source)
	if source == "" {
		return internal.EmissionFactor{}, errors.New("empty source")
	}

	scope := internal.Scope(toString(raw["scope"]))
	if !internal.ValidScope(scope) || scope == internal.ScopeUnknown {
		return internal.EmissionFactor{}, fmt.Errorf("invalid scope %v", raw["scope"])
	}

	unit := strings.TrimSpace(toString(raw["unit"]))
	if unit == "" {
		return internal.EmissionFactor{}, errors.New("empty unit")
	}

	value, ok := toFloat(raw["kgCo2ePerUnit"])
	if !ok || value < 0 {
		return internal.EmissionFactor{}, fmt.Errorf("invalid factor value %v", raw["kgCo2ePerUnit"])
	}

	standard := strings.TrimSpace(toString(raw["standard"]))
	if standard == "" {
		return internal.EmissionFactor{}, errors.New("empty standard")
	}

	return internal.EmissionFactor{
		Source:        source,
		Scope:         scope,
		Unit:          unit,
		KgCO2ePerUnit: value,
		Standard:      standard,
	}, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
