package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/iformai/iform/internal/logging"
)

const (
	baseURL        = "https://www.strava.com/api/v3"
	perPage        = 200
	requestTimeout = 30 * time.Second
)

// Default retry settings
const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// Timestamp is a provider timestamp. The API reports start_date with a zone
// offset but start_date_local as a zoneless local time, so both forms must
// decode.
type Timestamp struct {
	time.Time
}

const zonelessLayout = "2006-01-02T15:04:05"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse(zonelessLayout, s)
	}
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Activity represents a Strava activity as returned by the API. Distances
// are meters, times are seconds, speeds are meters per second.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          Timestamp `json:"start_date"`
	StartDateLocal     Timestamp `json:"start_date_local"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
}

// ErrUnauthorized indicates the access token was rejected by the API
var ErrUnauthorized = fmt.Errorf("strava: unauthorized")

// ErrRateLimited indicates the API returned 429 and retries were exhausted
var ErrRateLimited = fmt.Errorf("strava: rate limited")

// RetryConfig holds retry/backoff settings
type RetryConfig struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: defaultMaxRetries,
		MinWait:    defaultInitialBackoff,
		MaxWait:    defaultMaxBackoff,
	}
}

// Client is a Strava API client with automatic retry and backoff.
// A client is bound to one access token; create one per request.
type Client struct {
	httpClient  *retryablehttp.Client
	accessToken string
	baseURL     string
}

// NewClient creates a new Strava API client with default retry settings
func NewClient(accessToken string) *Client {
	return newClientWithConfig(accessToken, baseURL, DefaultRetryConfig())
}

// NewClientWithRetryConfig creates a new Strava API client with custom retry settings
func NewClientWithRetryConfig(accessToken string, cfg RetryConfig) *Client {
	return newClientWithConfig(accessToken, baseURL, cfg)
}

// NewClientWithBaseURL creates a client against a custom base URL (for testing)
func NewClientWithBaseURL(accessToken, customBaseURL string) *Client {
	return newClientWithConfig(accessToken, customBaseURL, DefaultRetryConfig())
}

func newClientWithConfig(accessToken, baseURL string, cfg RetryConfig) *Client {
	log := logging.Logger
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.MinWait
	client.RetryWaitMax = cfg.MaxWait
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = &logging.LeveledLogger{}

	// Retry on connection errors, 429 and 5xx. Auth failures are terminal.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return true, nil
		}
		if resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}

	client.Backoff = func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		// Honor Retry-After on rate limit responses
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					wait := time.Duration(seconds) * time.Second
					log.Info().
						Dur("wait", wait).
						Int("attempt", attemptNum).
						Msg("rate limited, waiting for Retry-After header")
					return wait
				}
			}
		}

		wait := min * time.Duration(1<<uint(attemptNum))
		if wait > max {
			wait = max
		}
		log.Debug().
			Dur("wait", wait).
			Int("attempt", attemptNum).
			Msg("backing off before retry")
		return wait
	}

	client.RequestLogHook = func(logger retryablehttp.Logger, req *http.Request, retry int) {
		if retry > 0 {
			log.Info().
				Str("url", req.URL.Path).
				Int("attempt", retry+1).
				Msg("retrying request")
		}
	}

	client.ResponseLogHook = func(logger retryablehttp.Logger, resp *http.Response) {
		if resp.StatusCode == http.StatusTooManyRequests {
			usage15, usageDaily := parseRateLimitUsage(resp.Header)
			log.Warn().
				Int("status", resp.StatusCode).
				Str("url", resp.Request.URL.Path).
				Str("15min_usage", usage15).
				Str("daily_usage", usageDaily).
				Msg("rate limited by API")
		}
	}

	return &Client{
		httpClient:  client,
		accessToken: accessToken,
		baseURL:     baseURL,
	}
}

// WithRetryConfig sets custom retry configuration (useful for testing)
func (c *Client) WithRetryConfig(maxRetries int, initialBackoff, maxBackoff time.Duration) *Client {
	c.httpClient.RetryMax = maxRetries
	c.httpClient.RetryWaitMin = initialBackoff
	c.httpClient.RetryWaitMax = maxBackoff
	return c
}

// FetchActivitiesSince fetches all of the athlete's activities that started
// after the given time, following pagination until an empty page.
func (c *Client) FetchActivitiesSince(ctx context.Context, after time.Time) ([]Activity, error) {
	var all []Activity
	page := 1

	for {
		activities, err := c.fetchActivitiesPage(ctx, page, after.Unix())
		if err != nil {
			return nil, err
		}

		if len(activities) == 0 {
			break
		}

		all = append(all, activities...)
		page++
	}

	logging.Debug("fetched activities", "count", len(all), "pages", page)
	return all, nil
}

func (c *Client) fetchActivitiesPage(ctx context.Context, page int, after int64) ([]Activity, error) {
	url := fmt.Sprintf("%s/athlete/activities?page=%d&per_page=%d", c.baseURL, page, perPage)
	if after > 0 {
		url += fmt.Sprintf("&after=%d", after)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		// Retries exhausted
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return activities, nil
}

// parseRateLimitUsage extracts the "15min,daily" usage/limit pairs Strava
// reports in its rate limit headers, preformatted for logging.
func parseRateLimitUsage(headers http.Header) (usage15, usageDaily string) {
	limits := strings.SplitN(headers.Get("X-RateLimit-Limit"), ",", 2)
	usages := strings.SplitN(headers.Get("X-RateLimit-Usage"), ",", 2)

	pick := func(parts []string, i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return "?"
	}

	usage15 = fmt.Sprintf("%s/%s", pick(usages, 0), pick(limits, 0))
	usageDaily = fmt.Sprintf("%s/%s", pick(usages, 1), pick(limits, 1))
	return usage15, usageDaily
}
