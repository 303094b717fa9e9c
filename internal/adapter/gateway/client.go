package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 10 * time.Second

	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"
	tokenScheme         = "Token "
	maxResponseBytes    = 4 << 20
	tracerName          = "github.com/Abdurahmanit/GroupProject/stay-client/gateway"
)

// TokenSource is read before every request. RemoveToken is called when a
// request that carried a token comes back 401.
type TokenSource interface {
	GetToken(ctx context.Context) (string, bool)
	RemoveToken(ctx context.Context)
}

type ClientConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration
	// Transport overrides http.DefaultTransport, mainly for tests.
	Transport http.RoundTripper
	// OnUnauthorized runs after the token is cleared following a 401, so
	// whoever holds the signed-in user can drop it too.
	OnUnauthorized func(ctx context.Context)
}

// Client is one backend's HTTP client: fixed base URL, fixed timeout, JSON
// in and out, one attempt per call.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logger.Logger
	metrics *metrics.Manager
	tracer  trace.Tracer

	onUnauthorized func(ctx context.Context)
}

func NewClient(cfg ClientConfig, tokens TokenSource, log logger.Logger, m *metrics.Manager) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s gateway: base URL is not configured", cfg.Name)
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s gateway: invalid base URL %q", cfg.Name, cfg.BaseURL)
	}
	if tokens == nil {
		return nil, fmt.Errorf("%s gateway: token source cannot be nil", cfg.Name)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout, Transport: cfg.Transport},
		tokens:  tokens,
		log:     log.With("backend", cfg.Name),
		metrics: m,
		tracer:  otel.Tracer(tracerName),

		onUnauthorized: cfg.OnUnauthorized,
	}, nil
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method string
	// route is the path template used for metric labels and span names.
	route string
	path  string
	query url.Values
	body  interface{}
}

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, c.name+" "+req.method+" "+req.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("http.route", req.route),
			attribute.String("backend", c.name),
		),
	)
	defer span.End()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	// Looked up on every call so login/logout apply to the very next request.
	token, hasToken := c.tokens.GetToken(ctx)
	if hasToken {
		httpReq.Header.Set(headerAuthorization, tokenScheme+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(c.name, req.method, req.route, 0, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no response")
		c.log.Warn("gateway request got no response",
			"method", req.method, "path", req.path, "request_id", httpReq.Header.Get(headerRequestID), "error", err)
		return &APIError{Backend: c.name, Method: req.method, Path: req.path, NoResponse: true, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(c.name, req.method, req.route, resp.StatusCode, elapsed)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return &APIError{Backend: c.name, Method: req.method, Path: req.path, Status: resp.StatusCode, NoResponse: true, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Backend: c.name,
			Method:  req.method,
			Path:    req.path,
			Status:  resp.StatusCode,
			Payload: jsonPayload(body),
		}
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		c.log.Debug("gateway request rejected",
			"method", req.method, "path", req.path, "status", resp.StatusCode,
			"request_id", httpReq.Header.Get(headerRequestID))

		if resp.StatusCode == http.StatusUnauthorized && hasToken {
			c.log.Info("gateway: token rejected by server, clearing stored session", "path", req.path)
			c.tokens.RemoveToken(ctx)
			if c.onUnauthorized != nil {
				c.onUnauthorized(ctx)
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		return fmt.Errorf("%s %s %s: failed to decode response: %w", c.name, req.method, req.path, err)
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s %s %s: failed to encode request body: %w", c.name, req.method, req.path, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: failed to build request: %w", c.name, req.method, req.path, err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set(headerRequestID, uuid.NewString())
	return httpReq, nil
}

// jsonPayload keeps the body only when it is JSON; HTML error pages from a
// proxy carry no usable message.
func jsonPayload(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}
