// Package forecast talks to the optional external forecast service and falls
// back to local synthesis when it is unavailable.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"motorcare/internal/maintenance"
	logx "motorcare/pkg/logx"
)

var (
	ErrNotConfigured = errors.New("forecast: service not configured")
	ErrEmptySchedule = errors.New("forecast: empty schedule")
)

// Request is the payload sent to the forecast service.
type Request struct {
	Vehicle   maintenance.Vehicle           `json:"vehicle"`
	Completed []maintenance.MaintenanceTask `json:"completed,omitempty"`
	Catalog   []maintenance.BaselineTask    `json:"catalog"`
}

// Service is the consumed collaborator boundary: it returns a full forecast
// schedule or an error. Callers must treat any error (network, malformed or
// empty response) as "use the fallback synthesizer instead".
type Service interface {
	Forecast(ctx context.Context, req Request) ([]maintenance.MaintenanceTask, error)
}

type ClientConfig struct {
	URL        string
	Timeout    time.Duration // per-request; default 10s
	RatePerSec int           // outbound request cap; default 1
}

// HTTPClient implements Service over JSON POST.
type HTTPClient struct {
	url     string
	hc      *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func NewHTTPClient(cfg ClientConfig, log logx.Logger) (*HTTPClient, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &HTTPClient{
		url:     url,
		hc:      &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}, nil
}

func (c *HTTPClient) Forecast(ctx context.Context, req Request) ([]maintenance.MaintenanceTask, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("forecast: encode request: %w", err)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast: unexpected status %d", resp.StatusCode)
	}

	var tasks []maintenance.MaintenanceTask
	dec := json.NewDecoder(io.LimitReader(resp.Body, 4<<20))
	if err := dec.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("forecast: decode response: %w", err)
	}
	if len(tasks) == 0 {
		return nil, ErrEmptySchedule
	}
	for i := range tasks {
		if strings.TrimSpace(tasks[i].ID) == "" {
			tasks[i].ID = maintenance.NewTaskID()
		}
	}
	return tasks, nil
}
