// Package catalog provides the client for the remote game catalog service.
//
// The catalog speaks an APIcalypse-style query language: a plaintext body
// of clauses (search, fields, where, sort, limit) POSTed to a single
// endpoint, authenticated with a client id and bearer token, and answered
// with a JSON array of entities. Calls are retried with exponential
// backoff and counted against a daily request quota tracked in-process.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/leroysdeath/vgsearch/internal/query"
	"github.com/leroysdeath/vgsearch/pkg/types"
)

const (
	// DefaultTimeout bounds one catalog call, independent of any
	// coordinator-level debounce timer.
	DefaultTimeout = 8 * time.Second

	// DefaultDailyQuota matches the catalog's free-tier request budget.
	DefaultDailyQuota = 5000

	maxRetries = 3
)

var (
	// ErrQuotaExceeded is returned once the daily request budget is spent.
	ErrQuotaExceeded = errors.New("daily catalog quota exceeded")
	// ErrMissingCredentials is returned when the client is constructed
	// without a client id or token.
	ErrMissingCredentials = errors.New("catalog client id and token are required")
)

// Config configures a Client.
type Config struct {
	// BaseURL is the catalog endpoint, e.g. "https://api.example.com/v4/games".
	BaseURL string

	ClientID string
	Token    string

	// Timeout per call (default: DefaultTimeout).
	Timeout time.Duration

	// DailyQuota caps requests per UTC day (default: DefaultDailyQuota).
	DailyQuota int

	// Logger for debug/error messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.DailyQuota <= 0 {
		c.DailyQuota = DefaultDailyQuota
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client queries the remote catalog.
type Client struct {
	baseURL    string
	clientID   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger

	quotaMu    sync.Mutex
	quotaDay   string
	quotaUsed  int
	quotaLimit int
}

// NewClient creates a catalog client from config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.Token == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	cfg.defaults()

	return &Client{
		baseURL:    cfg.BaseURL,
		clientID:   cfg.ClientID,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
		quotaLimit: cfg.DailyQuota,
	}, nil
}

// Search executes one structured query against the catalog and returns
// normalized entities. Transport failures are retried with exponential
// backoff; HTTP 4xx responses are not retried.
func (c *Client) Search(ctx context.Context, rq query.RemoteQuery) ([]*types.GameEntity, error) {
	if err := c.consumeQuota(); err != nil {
		return nil, err
	}

	body := Serialize(rq)

	var games []*types.GameEntity
	operation := func() error {
		var err error
		games, err = c.call(ctx, body)
		return err
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, fmt.Errorf("catalog search %q: %w", rq.Term, err)
	}
	return games, nil
}

// QuotaRemaining reports how many requests are left in the current day.
func (c *Client) QuotaRemaining() int {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != c.quotaDay {
		return c.quotaLimit
	}
	return c.quotaLimit - c.quotaUsed
}

func (c *Client) consumeQuota() error {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != c.quotaDay {
		c.quotaDay = day
		c.quotaUsed = 0
	}
	if c.quotaUsed >= c.quotaLimit {
		return ErrQuotaExceeded
	}
	c.quotaUsed++
	return nil
}

func (c *Client) call(ctx context.Context, body string) ([]*types.GameEntity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("catalog error %d: %s", resp.StatusCode, string(bodyBytes))
		// Client errors won't heal on retry; rate limiting and server
		// errors might.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(apiErr)
		}
		return nil, apiErr
	}

	var raw []remoteGame
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}

	games := make([]*types.GameEntity, 0, len(raw))
	for _, rg := range raw {
		games = append(games, rg.normalize())
	}
	return games, nil
}
