package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL     = "https://quickchart.io"
	DefaultTimeout     = 30 * time.Second
	DefaultContentType = "image/png"

	DefaultMaxImageBytes = 10 << 20
)

type Settings struct {
	BaseURL string
	Timeout time.Duration
	// MaxImageBytes caps one chart image, DefaultMaxImageBytes when zero.
	MaxImageBytes int64
}

// ChartError is the failure of one rendering call.
type ChartError struct {
	ChartID string
	Err     error
}

func (e ChartError) Error() string {
	return fmt.Sprintf("chart %s: %v", e.ChartID, e.Err)
}

func (e ChartError) Unwrap() error {
	return e.Err
}

// BatchError reports a rendering batch in which at least one call failed.
type BatchError struct {
	Failed []ChartError
	Total  int
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("rendering batch failed for %d of %d charts: %s", len(e.Failed), e.Total, strings.Join(msgs, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f)
	}
	return errs
}

type Renderer interface {
	// URL is the rendering endpoint address of one chart.
	URL(spec domain.ChartSpec) (string, error)
	// RenderAll renders every chart concurrently. It returns only once all
	// calls have completed, and fails as a whole if any call failed.
	RenderAll(ctx context.Context, specs []domain.ChartSpec) (map[string]domain.RenderedChart, error)
}

type renderer struct {
	baseURL  string
	maxBytes int64
	client   *http.Client
}

func NewRenderer(settings Settings) Renderer {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewRendererWithClient(settings, &http.Client{Timeout: timeout})
}

func NewRendererWithClient(settings Settings, client *http.Client) Renderer {
	base := strings.TrimSuffix(settings.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	maxBytes := settings.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &renderer{baseURL: base, maxBytes: maxBytes, client: client}
}

func (r *renderer) URL(spec domain.ChartSpec) (string, error) {
	config, err := Config(spec)
	if err != nil {
		return "", fmt.Errorf("encode chart %s: %w", spec.ID, err)
	}

	params := url.Values{}
	params.Set("width", strconv.Itoa(spec.Width))
	params.Set("height", strconv.Itoa(spec.Height))
	params.Set("version", "3")
	params.Set("c", string(config))
	return r.baseURL + "/chart?" + params.Encode(), nil
}

func (r *renderer) RenderAll(ctx context.Context, specs []domain.ChartSpec) (map[string]domain.RenderedChart, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	rendered := make([]domain.RenderedChart, len(specs))
	failures := make([]error, len(specs))

	// A plain group: one failing call must not cancel the others.
	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			chart, err := r.render(ctx, spec)
			if err != nil {
				failures[i] = err
				return err
			}
			rendered[i] = chart
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		batch := &BatchError{Total: len(specs)}
		for i, f := range failures {
			if f != nil {
				batch.Failed = append(batch.Failed, ChartError{ChartID: specs[i].ID, Err: f})
			}
		}
		logger.Error().Err(batch).Int("failed", len(batch.Failed)).Msg("chart rendering batch failed")
		return nil, batch
	}

	charts := make(map[string]domain.RenderedChart, len(rendered))
	for _, c := range rendered {
		charts[c.ChartID] = c
	}
	logger.Debug().Int("charts", len(charts)).Dur("duration", time.Since(start)).Msg("charts rendered")
	return charts, nil
}

func (r *renderer) render(ctx context.Context, spec domain.ChartSpec) (domain.RenderedChart, error) {
	target, err := r.URL(spec)
	if err != nil {
		return domain.RenderedChart{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.RenderedChart{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.RenderedChart{}, fmt.Errorf("request chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.RenderedChart{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return domain.RenderedChart{}, fmt.Errorf("read chart image: %w", err)
	}
	if int64(len(image)) > r.maxBytes {
		return domain.RenderedChart{}, fmt.Errorf("chart image exceeds %d bytes", r.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	return domain.RenderedChart{ChartID: spec.ID, ContentType: contentType, Image: image}, nil
}
