package apiclient

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

	"github.com/pkg/errors"

	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/risk"
)

// StatusError: ответ API не 2xx.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

type Client struct {
	baseURL string
	http    *http.Client
}

const defaultTimeout = 30 * time.Second

// New: клиент API по адресу baseURL; при nil httpClient таймаут 30s.
// Client подходит как Backend агрегата и как workspace.Loader.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Detail: e.Detail}
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.NewDecoder(resp.Body).Decode(out), "decode %s %s", method, path)
}

func systemPath(id string) string { return "/information_systems/" + url.PathEscape(id) }
func threatPath(id string) string { return "/threat/" + url.PathEscape(id) }

// GetSystem: система вместе с угрозами.
func (c *Client) GetSystem(ctx context.Context, id string) (dto.InformationSystem, error) {
	var sys dto.InformationSystem
	err := c.do(ctx, http.MethodGet, systemPath(id), nil, &sys)
	return sys, err
}

// LoadThreats: workspace.Loader.
func (c *Client) LoadThreats(ctx context.Context, systemID string) ([]dto.Threat, error) {
	sys, err := c.GetSystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	return sys.Threats, nil
}

// CreateThreat: без факторов берётся шаблон по умолчанию.
func (c *Client) CreateThreat(ctx context.Context, systemID string, req dto.CreateThreatRequest) (dto.Threat, error) {
	if req.Risk == nil {
		req.Risk = risk.DefaultFactors()
	}
	var t dto.Threat
	err := c.do(ctx, http.MethodPost, systemPath(systemID)+"/threats", req, &t)
	return t, err
}

// UpdateBatch: весь пакет одним запросом.
func (c *Client) UpdateBatch(ctx context.Context, systemID string, updates []dto.ThreatUpdate) error {
	if updates == nil {
		updates = []dto.ThreatUpdate{}
	}
	return c.do(ctx, http.MethodPut, systemPath(systemID)+"/threats/risk/batch", updates, nil)
}

func (c *Client) DeleteThreat(ctx context.Context, threatID string) error {
	return c.do(ctx, http.MethodDelete, threatPath(threatID), nil, nil)
}

// UpdateRisk: частичное обновление, ключи как в элементе пакета без threat_id.
func (c *Client) UpdateRisk(ctx context.Context, threatID string, fields map[string]any) (dto.Threat, error) {
	var t dto.Threat
	err := c.do(ctx, http.MethodPut, threatPath(threatID)+"/risk", fields, &t)
	return t, err
}

func (c *Client) SetResidualRisk(ctx context.Context, threatID string, value float64) (dto.Threat, error) {
	var t dto.Threat
	err := c.do(ctx, http.MethodPut, threatPath(threatID)+"/residual-risk", dto.ResidualRiskRequest{ResidualRisk: &value}, &t)
	return t, err
}
