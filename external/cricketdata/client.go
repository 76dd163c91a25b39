package cricketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/glgenie/gl-genie/internal/domain/player"
	"github.com/glgenie/gl-genie/internal/platform/logging"
	"github.com/glgenie/gl-genie/internal/platform/resilience"
	"github.com/glgenie/gl-genie/internal/usecase"
)

const (
	defaultBaseURL  = "https://api.cricapi.com/v1"
	defaultTimeout  = 20 * time.Second
	maxResponseSize = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`apikey=[^&\s"']+`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client fetches match rosters from the cricket data provider. Transient
// provider failures are retried with exponential backoff; repeated
// failures open the circuit breaker so a degraded provider is not hammered.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	retry          resilience.RetryConfig
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
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

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		retry:          resilience.NormalizeRetryConfig(cfg.Retry),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchMatchRoster returns both sides and their players for one match. An
// unknown match maps to the not-found sentinel; an exhausted or
// misconfigured provider maps to the dependency sentinel. Context errors
// pass through untouched so callers can tell a deadline from an outage.
func (c *Client) FetchMatchRoster(ctx context.Context, matchID string) (usecase.Roster, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return usecase.Roster{}, fmt.Errorf("match id must not be empty")
	}
	if c.apiKey == "" {
		return usecase.Roster{}, fmt.Errorf("%w: cricket data api key is not configured", usecase.ErrDependencyUnavailable)
	}

	var envelope matchInfoEnvelope
	if err := c.doJSON(ctx, "/match_info", map[string]string{"id": matchID}, &envelope); err != nil {
		return usecase.Roster{}, fmt.Errorf("fetch match info match_id=%s: %w", matchID, err)
	}

	if !strings.EqualFold(envelope.Status, "success") {
		return usecase.Roster{}, fmt.Errorf("%w: provider rejected match %s: status=%s",
			usecase.ErrNotFound, matchID, envelope.Status)
	}
	if len(envelope.Data.Teams) != 2 {
		return usecase.Roster{}, fmt.Errorf("%w: match %s has %d sides",
			usecase.ErrNotFound, matchID, len(envelope.Data.Teams))
	}

	roster := usecase.Roster{
		MatchID: matchID,
		Team1:   strings.TrimSpace(envelope.Data.Teams[0]),
		Team2:   strings.TrimSpace(envelope.Data.Teams[1]),
		Players: make([]player.Player, 0, len(envelope.Data.Players)),
	}

	for _, row := range envelope.Data.Players {
		p := player.Player{
			ID:    strings.TrimSpace(row.ID),
			Name:  strings.TrimSpace(row.Name),
			Team:  strings.TrimSpace(row.Team),
			Role:  player.NormalizeRole(row.Role),
			Stats: mapStats(row.Stats),
		}
		if p.Name == "" || (p.Team != roster.Team1 && p.Team != roster.Team2) {
			c.logger.WarnContext(ctx, "skipping malformed roster entry",
				"match_id", matchID,
				"player_id", row.ID,
			)
			continue
		}
		if p.ID == "" {
			p.ID = p.Name
		}
		roster.Players = append(roster.Players, p)
	}

	return roster, nil
}

// FetchUpcomingMatches returns the provider's upcoming fixture schedule.
// Entries without an id or without two named sides are skipped, never
// fatal; an unparseable start time leaves StartsAt zero.
func (c *Client) FetchUpcomingMatches(ctx context.Context) ([]usecase.UpcomingMatch, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: cricket data api key is not configured", usecase.ErrDependencyUnavailable)
	}

	var envelope matchesEnvelope
	if err := c.doJSON(ctx, "/matches", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch upcoming matches: %w", err)
	}
	if !strings.EqualFold(envelope.Status, "success") {
		return nil, fmt.Errorf("%w: provider rejected schedule request: status=%s",
			usecase.ErrDependencyUnavailable, envelope.Status)
	}

	matches := make([]usecase.UpcomingMatch, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		id := strings.TrimSpace(row.ID)
		if id == "" || len(row.Teams) != 2 {
			c.logger.WarnContext(ctx, "skipping malformed schedule entry", "match_id", row.ID)
			continue
		}
		matches = append(matches, usecase.UpcomingMatch{
			MatchID:  id,
			Name:     strings.TrimSpace(row.Name),
			Team1:    strings.TrimSpace(row.Teams[0]),
			Team2:    strings.TrimSpace(row.Teams[1]),
			Venue:    strings.TrimSpace(row.Venue),
			StartsAt: parseProviderTime(row.DateTimeGMT),
		})
	}

	return matches, nil
}

func parseProviderTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if at, err := time.Parse(layout, raw); err == nil {
			return at.UTC()
		}
	}
	return time.Time{}
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricket data circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: cricket data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	key := path + "?" + values.Encode()

	values.Set("apikey", c.apiKey)
	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := resilience.Do(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
			return c.executeRequest(ctx, fullURL)
		})
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, resilience.ErrTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrTransient) {
			c.logger.WarnContext(ctx, "cricket data request exhausted retries",
				"url", redactAPIURL(fullURL),
				"error", sanitizeSensitiveText(err.Error(), c.apiKey),
			)
			return fmt.Errorf("%w: %s", usecase.ErrDependencyUnavailable, sanitizeSensitiveText(err.Error(), c.apiKey))
		}
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

// executeRequest performs one round trip and classifies the outcome:
// network failures, 429 and 5xx are transient; 404 maps to not-found;
// 401 and 403 are credential failures that no retry can fix.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.Transientf("send request: %s", sanitizeSensitiveText(err.Error(), c.apiKey))
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resilience.Transientf("read response body: %v", readErr)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: provider status=%d", usecase.ErrNotFound, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: provider rejected credentials status=%d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	case isRetryableStatus(resp.StatusCode):
		return nil, resilience.Transientf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	default:
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
}

func mapStats(raw statsPayload) player.Stats {
	stats := player.Stats{}
	if raw.BattingAvg != nil {
		stats.BatAvg = *raw.BattingAvg
	}
	if raw.BattingStrikeRate != nil {
		stats.BatSR = *raw.BattingStrikeRate
	}
	if raw.BowlingAvg != nil {
		stats.BowlAvg = *raw.BowlingAvg
	}
	if raw.BowlingStrikeRate != nil {
		stats.BowlSR = *raw.BowlingStrikeRate
	}
	if raw.DeathOversPct != nil {
		stats.DeathOversPct = *raw.DeathOversPct
	}
	return stats.FillDefaults()
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apikey=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("apikey") {
		query.Set("apikey", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
