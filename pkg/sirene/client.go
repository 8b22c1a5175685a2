// Package sirene provides a client for the data.siren-api.fr company registry.
package sirene

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/internal/resilience"
)

const (
	// DefaultBaseURL is the production registry endpoint.
	DefaultBaseURL = "https://data.siren-api.fr"
	// DefaultTestSIRET is a known establishment used to probe connectivity.
	DefaultTestSIRET = "73282932000074"

	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = resilience.DefaultMaxAttempts
	defaultBackoffBase = resilience.DefaultBackoffBase
)

// Client defines the registry lookups.
type Client interface {
	// FetchEstablishment returns the establishment identified by a 14-digit SIRET.
	FetchEstablishment(ctx context.Context, siret string) (*model.EstablishmentRecord, error)
	// FetchLegalEntity returns the legal entity identified by a 9-digit SIREN.
	FetchLegalEntity(ctx context.Context, siren string) (*model.LegalEntityRecord, error)
	// TestConnection probes the API with a sample SIRET. It never returns an
	// error; the outcome is reported in the result.
	TestConnection(ctx context.Context, sampleSIRET string) *ConnectionResult
}

// ConnectionResult is the outcome of a connectivity probe.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type etablissementResponse struct {
	Etablissement *model.EstablishmentRecord `json:"etablissement"`
}

type uniteLegaleResponse struct {
	UniteLegale *model.LegalEntityRecord `json:"unite_legale"`
}

// Option configures the registry client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client. It replaces the timeout set by
// WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetry sets the attempt budget and the linear backoff base. The n-th
// retry waits n×base; a zero base retries without sleeping.
func WithRetry(maxAttempts int, base time.Duration) Option {
	return func(c *httpClient) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if base >= 0 {
			c.backoffBase = base
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *httpClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRateLimit paces outbound requests to rps per second. Zero or negative
// disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey      string
	baseURL     string
	http        *http.Client
	maxAttempts int
	backoffBase time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a registry client authenticating with apiKey. An empty
// key is accepted here and reported as KindConfiguration on first use.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) FetchEstablishment(ctx context.Context, siret string) (*model.EstablishmentRecord, error) {
	var resp etablissementResponse
	if err := c.get(ctx, "fetch_establishment", "/v3/etablissements/"+url.PathEscape(siret), &resp); err != nil {
		return nil, err
	}
	if resp.Etablissement == nil {
		return &model.EstablishmentRecord{}, nil
	}
	return resp.Etablissement, nil
}

func (c *httpClient) FetchLegalEntity(ctx context.Context, siren string) (*model.LegalEntityRecord, error) {
	var resp uniteLegaleResponse
	if err := c.get(ctx, "fetch_legal_entity", "/v3/unites_legales/"+url.PathEscape(siren), &resp); err != nil {
		return nil, err
	}
	if resp.UniteLegale == nil {
		return &model.LegalEntityRecord{}, nil
	}
	return resp.UniteLegale, nil
}

func (c *httpClient) TestConnection(ctx context.Context, sampleSIRET string) *ConnectionResult {
	if sampleSIRET == "" {
		sampleSIRET = DefaultTestSIRET
	}
	if _, err := c.FetchEstablishment(ctx, sampleSIRET); err != nil {
		return &ConnectionResult{Success: false, Message: UserMessage(err)}
	}
	return &ConnectionResult{Success: true, Message: "Connexion à l'API Siren réussie."}
}

// get performs one logical lookup: a bounded series of attempts against
// path, decoding a 200 body into out.
func (c *httpClient) get(ctx context.Context, operation, path string, out any) error {
	if c.apiKey == "" {
		c.logger.Error("sirene: api key not configured", zap.String("operation", operation))
		return NewError(KindConfiguration, nil)
	}

	cfg := resilience.NewRetryConfig(c.maxAttempts, c.backoffBase)
	cfg.OnRetry = resilience.RetryLogger(c.logger, "sirene", operation)

	body, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return c.attempt(ctx, path)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("sirene: decode response",
			zap.String("operation", operation),
			zap.Int("body_length", len(body)),
			zap.Error(err),
		)
		return NewError(KindDecode, eris.Wrap(err, "sirene: unmarshal response"))
	}
	return nil
}

// attempt issues a single request and maps the outcome onto the error
// taxonomy. Retryable outcomes carry a resilience.TransientError cause.
func (c *httpClient) attempt(ctx context.Context, path string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, NewError(KindTransport, eris.Wrap(err, "sirene: rate limiter"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, NewError(KindTransport, eris.Wrap(err, "sirene: create request"))
	}
	req.Header.Set("X-Client-Secret", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("sirene: transport failure", zap.String("path", path), zap.Error(err))
		return nil, NewError(KindTransport, resilience.NewTransientError(eris.Wrap(err, "sirene: request failed"), 0))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("sirene: read body", zap.String("path", path), zap.Error(err))
		return nil, NewError(KindTransport, resilience.NewTransientError(eris.Wrap(err, "sirene: read response body"), resp.StatusCode))
	}

	switch status := resp.StatusCode; {
	case status == http.StatusOK:
		return body, nil
	case status == http.StatusBadRequest:
		return nil, statusError(KindInvalidInput, status, nil)
	case status == http.StatusNotFound:
		return nil, statusError(KindNotFound, status, nil)
	case resilience.IsTransientHTTPStatus(status):
		c.logger.Warn("sirene: server error", zap.String("path", path), zap.Int("status", status))
		return nil, statusError(KindServer, status, resilience.NewTransientError(eris.Errorf("sirene: status %d", status), status))
	default:
		return nil, statusError(KindAPI, status, eris.Errorf("sirene: unexpected status %d: %s", status, truncate(body, 200)))
	}
}

func statusError(kind Kind, status int, cause error) *Error {
	return &Error{Kind: kind, Message: DefaultMessage(kind, status), StatusCode: status, Err: cause}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s…", b[:n])
}
