package calls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chiefduck/ratewatch/internal/proxy"
)

// ErrCallNotFound is returned when the call-control API no longer knows the call.
var ErrCallNotFound = errors.New("call not found")

const maxErrorBody = 4 << 10

// BlandClient talks to the Bland call-control API.
type BlandClient struct {
	baseURL string
	apiKey  string
	logger  *slog.Logger
	http    *http.Client
}

func NewBlandClient(log *slog.Logger, baseURL, apiKey string, timeout time.Duration) (*BlandClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("bland client: base url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("bland client: api key is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BlandClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  log.With(slog.String("client", "bland")),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// StopCall asks Bland to end an active call.
func (c *BlandClient) StopCall(ctx context.Context, callID string) error {
	endpoint := c.baseURL + "/calls/" + url.PathEscape(callID) + "/stop"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bland stop call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("call unknown upstream", slog.String("call_id", callID), slog.String("body", string(body)))
		return ErrCallNotFound
	}
	return proxy.Upstream("Bland", resp.StatusCode, string(body))
}
