package scoring

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/glgenie/gl-genie/internal/domain/player"
	"github.com/glgenie/gl-genie/internal/platform/logging"
	"github.com/glgenie/gl-genie/internal/platform/resilience"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Retry      resilience.RetryConfig
	Logger     *logging.Logger
}

// Client scores players against an HTTP model server. One request scores
// one player; callers fan out across the roster, so a single slow or
// broken row never blocks the rest.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      resilience.RetryConfig
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		retry:      resilience.NormalizeRetryConfig(cfg.Retry),
		logger:     logger,
	}
}

type scoreRequest struct {
	PlayerID      string  `json:"player_id"`
	Role          string  `json:"role"`
	BatAvg        float64 `json:"bat_avg"`
	BatSR         float64 `json:"bat_sr"`
	BowlAvg       float64 `json:"bowl_avg"`
	BowlSR        float64 `json:"bowl_sr"`
	DeathOversPct float64 `json:"death_overs_pct"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

func (c *Client) Score(ctx context.Context, p player.Player) (float64, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("model server url is not configured")
	}

	stats := p.Stats.FillDefaults()
	payload := scoreRequest{
		PlayerID:      p.ID,
		Role:          string(p.Role),
		BatAvg:        stats.BatAvg,
		BatSR:         stats.BatSR,
		BowlAvg:       stats.BowlAvg,
		BowlSR:        stats.BowlSR,
		DeathOversPct: stats.DeathOversPct,
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode score request: %w", err)
	}
	_, _ = buf.Write(encoded)

	out, err := resilience.Do(ctx, c.retry, func(ctx context.Context) (scoreResponse, error) {
		return c.postScore(ctx, buf.Bytes())
	})
	if err != nil {
		return 0, fmt.Errorf("score player %s: %w", p.ID, err)
	}

	return out.Score, nil
}

func (c *Client) postScore(ctx context.Context, body []byte) (scoreResponse, error) {
	var zero scoreResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, resilience.Transientf("send request: %v", err)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if readErr != nil {
		return zero, resilience.Transientf("read response body: %v", readErr)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return zero, resilience.Transientf("model server status=%d", resp.StatusCode)
	default:
		return zero, fmt.Errorf("model server status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out scoreResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode score response: %w", err)
	}

	return out, nil
}
