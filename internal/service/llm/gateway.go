package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"boardroom-backend/internal/domain"
	appErrors "boardroom-backend/pkg/errors"
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 4 << 20

// Gateway is the HTTP implementation of Provider.
type Gateway struct {
	cfg     Config
	codec   codec
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

var _ Provider = (*Gateway)(nil)

// NewGateway builds a gateway. A missing API key is accepted; the provider
// rejects the call later. A nil client gets a default one honoring
// cfg.Timeout.
func NewGateway(cfg Config, client *http.Client, logger *zap.Logger) (*Gateway, error) {
	c, ok := codecs[cfg.Shape]
	if !ok {
		return nil, fmt.Errorf("unknown provider shape %q", cfg.Shape)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("provider %s: endpoint is required", cfg.Name)
	}
	if !cfg.Sender.IsProvider() {
		return nil, fmt.Errorf("provider %s: sender %q is not a provider", cfg.Name, cfg.Sender)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Gateway{
		cfg:    cfg,
		codec:  c,
		client: client,
		logger: logger.With(zap.String("provider", cfg.Name)),
	}
	if cfg.Breaker.Enabled {
		g.breaker = newBreaker(cfg.Name, cfg.Breaker, g.logger)
	}
	return g, nil
}

func newBreaker(name string, bc BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A 4xx is the caller's fault, not an outage.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if status, ok := StatusOf(err); ok && status < 500 {
				return true
			}
			return false
		},
	})
}

func (g *Gateway) Name() string          { return g.cfg.Name }
func (g *Gateway) Sender() domain.Sender { return g.cfg.Sender }
func (g *Gateway) Persona() string       { return g.cfg.Persona }

// Complete sends one request. Errors are typed: transport failures and an
// open breaker are UPSTREAM_UNAVAILABLE, non-2xx answers are
// UPSTREAM_REJECTED wrapping a *ProviderError, and an unreadable success
// body is INTERNAL.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	if g.breaker == nil {
		return g.do(ctx, req)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.do(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", appErrors.NewUpstreamUnavailable(fmt.Sprintf("%s circuit breaker open", g.cfg.Persona), err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (g *Gateway) do(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(g.codec.encode(g.cfg, req))
	if err != nil {
		return "", appErrors.NewInternal("encode provider request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", appErrors.NewInternal("build provider request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.cfg.AuthHeader != "" {
		value := g.cfg.APIKey
		if g.cfg.AuthScheme != "" {
			value = g.cfg.AuthScheme + " " + value
		}
		httpReq.Header.Set(g.cfg.AuthHeader, value)
	}
	for k, v := range g.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error("provider request failed", zap.Error(err))
		return "", appErrors.NewUpstreamUnavailable(fmt.Sprintf("%s request failed", g.cfg.Persona), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", appErrors.NewUpstreamUnavailable(fmt.Sprintf("read %s response", g.cfg.Persona), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("provider API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", appErrors.NewUpstreamRejected(
			fmt.Sprintf("Failed to get response from %s", g.cfg.Persona),
			&ProviderError{Provider: g.cfg.Name, StatusCode: resp.StatusCode, Body: string(body)},
		)
	}

	text, err := g.codec.extract(body)
	if err != nil {
		g.logger.Error("unexpected provider response", zap.Error(err))
		return "", appErrors.NewInternal(fmt.Sprintf("unexpected %s response", g.cfg.Persona), err)
	}
	return text, nil
}
