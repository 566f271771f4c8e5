package fpl

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-dataset/internal/platform/logging"
	"github.com/riskibarqy/fpl-dataset/internal/platform/resilience"
	"github.com/riskibarqy/fpl-dataset/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL      = "https://fantasy.premierleague.com/api"
	defaultUserAgent    = "fpl-dataset/1.0"
	defaultTimeout      = 30 * time.Second
	defaultRetryBackoff = time.Second
	maxBodyBytes        = 16 << 20
	sourceName          = "fpl"
)

var errFPLTransient = crerr.New("fpl transient failure")

// numberAPI keeps JSON numbers as json.Number so ids and counters stay exact
// integers instead of float64.
var numberAPI = sonic.Config{UseNumber: true}.Froze()

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
	now            func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		userAgent:      userAgent,
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   backoff,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

func (c *Client) FetchBootstrap(ctx context.Context) (usecase.ExternalBootstrap, error) {
	const path = "/bootstrap-static/"

	var envelope bootstrapEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return usecase.ExternalBootstrap{}, fmt.Errorf("fetch bootstrap-static: %w", err)
	}

	return usecase.ExternalBootstrap{
		Players:     envelope.Elements,
		Teams:       envelope.Teams,
		Events:      envelope.Events,
		RawPayloads: []rawdata.Payload{c.buildPayload(rawdata.EntityBootstrap, path, raw)},
	}, nil
}

func (c *Client) FetchFixtures(ctx context.Context) (usecase.ExternalRecords, error) {
	const path = "/fixtures/"

	var fixtures []map[string]any
	raw, err := c.doJSON(ctx, path, &fixtures)
	if err != nil {
		return usecase.ExternalRecords{}, fmt.Errorf("fetch fixtures: %w", err)
	}

	return usecase.ExternalRecords{
		Records:     fixtures,
		RawPayloads: []rawdata.Payload{c.buildPayload(rawdata.EntityFixtures, path, raw)},
	}, nil
}

// FetchEventLive returns one row per player: the element's stats object with
// player_id and round added.
func (c *Client) FetchEventLive(ctx context.Context, gameweek int) (usecase.ExternalRecords, error) {
	if gameweek <= 0 {
		return usecase.ExternalRecords{}, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/event/%d/live/", gameweek)
	var envelope liveEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return usecase.ExternalRecords{}, fmt.Errorf("fetch event live gameweek=%d: %w", gameweek, err)
	}

	rows := make([]map[string]any, 0, len(envelope.Elements))
	for _, element := range envelope.Elements {
		row := make(map[string]any, len(element.Stats)+2)
		for key, value := range element.Stats {
			row[key] = value
		}
		row["player_id"] = element.ID
		row["round"] = gameweek
		rows = append(rows, row)
	}

	payload := c.buildPayload(rawdata.EntityEventLive, path, raw)
	payload.Gameweek = &gameweek
	return usecase.ExternalRecords{
		Records:     rows,
		RawPayloads: []rawdata.Payload{payload},
	}, nil
}

// FetchPlayerSummary returns the player's current-season gameweek history and
// past-season aggregates, each row tagged with player_id.
func (c *Client) FetchPlayerSummary(ctx context.Context, playerID int64) (usecase.ExternalPlayerSummary, error) {
	if playerID <= 0 {
		return usecase.ExternalPlayerSummary{}, fmt.Errorf("%w: player id must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/element-summary/%d/", playerID)
	var envelope playerSummaryEnvelope
	raw, err := c.doJSON(ctx, path, &envelope)
	if err != nil {
		return usecase.ExternalPlayerSummary{}, fmt.Errorf("fetch element summary player_id=%d: %w", playerID, err)
	}

	payload := c.buildPayload(rawdata.EntityPlayerSummary, path, raw)
	payload.PlayerID = &playerID
	return usecase.ExternalPlayerSummary{
		PlayerID:    playerID,
		History:     tagPlayer(envelope.History, playerID),
		HistoryPast: tagPlayer(envelope.HistoryPast, playerID),
		RawPayloads: []rawdata.Payload{payload},
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) ([]byte, error) {
	out, err, _ := c.flight.Do(path, func() (any, error) {
		var raw []byte
		request := func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, c.baseURL+path)
			return reqErr
		}
		if !c.circuitEnabled {
			if err := request(); err != nil {
				return nil, err
			}
			return raw, nil
		}

		err := c.breaker.Run(request, isFPLCircuitFailure)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "path", path, "state", c.breaker.State())
			return nil, fmt.Errorf("%w: fpl api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return raw, err
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := numberAPI.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode fpl payload: %w", err)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %v", errFPLTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFPLTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: fpl status=%d body=%s", errFPLTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("fpl status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fpl request failed")
	}
	c.logger.WarnContext(ctx, "fpl request failed", "url", fullURL, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func (c *Client) buildPayload(entityType, path string, raw []byte) rawdata.Payload {
	return rawdata.Payload{
		Source:      sourceName,
		EntityType:  entityType,
		EntityKey:   path,
		PayloadJSON: string(raw),
		FetchedAt:   c.now().UTC(),
	}
}

func tagPlayer(rows []map[string]any, playerID int64) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		tagged := make(map[string]any, len(row)+1)
		for key, value := range row {
			tagged[key] = value
		}
		tagged["player_id"] = playerID
		out = append(out, tagged)
	}
	return out
}

func isFPLCircuitFailure(err error) bool {
	return crerr.Is(err, errFPLTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

type bootstrapEnvelope struct {
	Elements []map[string]any `json:"elements"`
	Teams    []map[string]any `json:"teams"`
	Events   []map[string]any `json:"events"`
}

type liveEnvelope struct {
	Elements []liveElement `json:"elements"`
}

type liveElement struct {
	ID    int64          `json:"id"`
	Stats map[string]any `json:"stats"`
}

type playerSummaryEnvelope struct {
	History     []map[string]any `json:"history"`
	HistoryPast []map[string]any `json:"history_past"`
}
