package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/logging"
	"github.com/agbru/lasercalc/internal/metrics"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/report"
	"github.com/agbru/lasercalc/internal/selection"
)

const (
	// CalculatePath is the estimation endpoint.
	CalculatePath = "/api/calculate"
	// HealthPath is the liveness endpoint.
	HealthPath = "/api/health"
	// FileField is the multipart field carrying the drawing.
	FileField = "file"

	tracerName = "github.com/agbru/lasercalc/internal/estimator"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// Client calls the estimation service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	newID   func() uuid.UUID
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. Zero disables the client-side limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request outcomes and latency in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewClient returns a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, apperrors.NewConfigError("invalid service URL %q: %v", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.NewConfigError("invalid service URL %q: expected http(s)://host[:port]", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{},
		logger:  logging.NewNopLogger(),
		tracer:  otel.Tracer(tracerName),
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Compute uploads file with p and returns the service's report.
func (c *Client) Compute(ctx context.Context, file selection.SourceFile, p params.MachineParameters) (report.Report, error) {
	id := c.newID()
	ctx, span := c.tracer.Start(ctx, "estimator.Compute", trace.WithAttributes(
		attribute.String("request.id", id.String()),
		attribute.String("file.name", file.Name),
		attribute.Int("file.size", file.Size()),
	))
	defer span.End()

	c.metrics.IncrementActiveRequests()
	start := time.Now()
	rep, err := c.compute(ctx, id, file, p)
	elapsed := time.Since(start)
	c.metrics.DecrementActiveRequests()
	c.metrics.ObserveRequest(err, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.UserMessage(err))
		c.logger.Debug("estimation failed",
			logging.String("request_id", id.String()),
			logging.String("outcome", metrics.Outcome(err)),
			logging.Err(err),
		)
		return report.Report{}, err
	}
	span.SetStatus(codes.Ok, "")
	c.logger.Debug("estimation complete",
		logging.String("request_id", id.String()),
		logging.String("formatted_time", rep.FormattedTime),
		logging.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000),
	)
	return rep, nil
}

func (c *Client) compute(ctx context.Context, id uuid.UUID, file selection.SourceFile, p params.MachineParameters) (report.Report, error) {
	body, contentType, err := encodeForm(file, p)
	if err != nil {
		return report.Report{}, fmt.Errorf("encode form: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.baseURL + CalculatePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return report.Report{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", id.String())

	c.logger.Debug("estimation request",
		logging.String("request_id", id.String()),
		logging.String("url", endpoint),
		logging.String("file", file.Name),
		logging.Int("bytes", len(body)),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return report.Report{}, c.networkError(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return report.Report{}, c.networkError(ctx, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return report.Report{}, &apperrors.ServiceError{
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(payload),
		}
	}
	return report.FromResponse(payload)
}

// Health calls GET /api/health and reports whether the service answered
// {"status":"ok"}.
func (c *Client) Health(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "estimator.Health")
	defer span.End()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.baseURL + HealthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		err = c.networkError(ctx, endpoint, err)
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode != http.StatusOK {
		return &apperrors.ServiceError{StatusCode: resp.StatusCode, Detail: extractDetail(payload)}
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &status); err != nil {
		return &apperrors.DecodeError{Field: "status", Reason: "unreadable health response", Cause: err}
	}
	if status.Status != "ok" {
		return &apperrors.ServiceError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("service reported status %q", status.Status)}
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) networkError(ctx context.Context, endpoint string, err error) error {
	netErr := &apperrors.NetworkError{URL: endpoint, Limit: c.timeout, Cause: err}
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		netErr.Cause = context.Canceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		netErr.Timeout = true
	default:
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			netErr.Timeout = true
		}
	}
	return netErr
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeForm writes the drawing and one text field per parameter, in wire
// order.
func encodeForm(file selection.SourceFile, p params.MachineParameters) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileField, quoteEscaper.Replace(file.Name)))
	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = selection.SVGMediaType
	}
	h.Set("Content-Type", mediaType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data()); err != nil {
		return nil, "", err
	}

	for _, kv := range p.FormValues() {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// extractDetail pulls the user-facing message out of an error body. A string
// detail is returned verbatim; a list of validation entries is joined by their
// msg fields; anything else yields the generic failure message.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apperrors.GenericFailureMessage
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		if text == "" {
			return apperrors.GenericFailureMessage
		}
		return text
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return apperrors.GenericFailureMessage
}
