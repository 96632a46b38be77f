package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/config"
)

const (
	defaultTimeout = 10 * time.Second

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 1 << 20
)

// Logger is the logging interface used by the client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// SunTimes is sunrise and sunset on one day.
type SunTimes struct {
	Sunrise time.Time
	Sunset  time.Time
}

// Client requests sun phase data.
//
// Thread Safety: safe for concurrent use.
type Client struct {
	url        string
	attempts   int
	retryDelay time.Duration
	httpClient *http.Client
	logger     Logger
}

// New creates a Client from the weather section of config.yaml.
// A nil logger disables logging.
func New(cfg config.WeatherConfig, logger Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	if logger == nil {
		logger = noopLogger{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := max(cfg.Attempts, 1)

	return &Client{
		url:        cfg.URL,
		attempts:   attempts,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// SunPhase returns sunrise and sunset on day, in day's location.
//
// Parameters:
//   - ctx: Cancels the request and any back-off wait
//   - day: The calendar day the times are placed on
//
// Returns:
//   - SunTimes: Sunrise and sunset on day
//   - error: ErrAttemptsExceeded wrapping the last failure, ErrInvalidTime,
//     or the context's error
func (c *Client) SunPhase(ctx context.Context, day time.Time) (SunTimes, error) {
	var (
		resp    response
		lastErr error
	)
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.retryDelay
			c.logger.Warn("retrying sun phase request",
				"attempt", attempt+1, "wait", wait, "error", lastErr)
			if err := sleep(ctx, wait); err != nil {
				return SunTimes{}, err
			}
		}

		resp, lastErr = c.fetch(ctx)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return SunTimes{}, ctx.Err()
		}
	}
	if lastErr != nil {
		return SunTimes{}, fmt.Errorf("%w (%d): %w", ErrAttemptsExceeded, c.attempts, lastErr)
	}

	sunrise, err := resp.SunPhase.Sunrise.on(day)
	if err != nil {
		return SunTimes{}, fmt.Errorf("sunrise: %w", err)
	}
	sunset, err := resp.SunPhase.Sunset.on(day)
	if err != nil {
		return SunTimes{}, fmt.Errorf("sunset: %w", err)
	}

	c.logger.Debug("sun phase received", "sunrise", sunrise.Format("15:04"), "sunset", sunset.Format("15:04"))
	return SunTimes{Sunrise: sunrise, Sunset: sunset}, nil
}

func (c *Client) fetch(ctx context.Context) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return response{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("requesting sun phase: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes)) //nolint:errcheck // drain for reuse
		return response{}, fmt.Errorf("%w: %s", ErrBadStatus, res.Status)
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(&body); err != nil {
		return response{}, fmt.Errorf("decoding sun phase: %w", err)
	}
	return body, nil
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type response struct {
	SunPhase struct {
		Sunrise clockTime `json:"sunrise"`
		Sunset  clockTime `json:"sunset"`
	} `json:"sun_phase"`
}

// clockTime is a 24-hour time with string fields, as the service sends it.
type clockTime struct {
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
}

// on places the time on day's calendar date.
func (ct clockTime) on(day time.Time) (time.Time, error) {
	hour, err := strconv.Atoi(ct.Hour)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("%w: hour %q", ErrInvalidTime, ct.Hour)
	}
	minute, err := strconv.Atoi(ct.Minute)
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: minute %q", ErrInvalidTime, ct.Minute)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location()), nil
}
