package cli

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

	"magnate/internal/econ"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) State(ctx context.Context) (econ.StateView, error) {
	var out econ.StateView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out)
	return out, err
}

func (c *Client) Catalog(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/catalog", nil, &out)
	return out, err
}

func (c *Client) BuyBusiness(ctx context.Context, templateID int64) (econ.BusinessView, error) {
	var out econ.BusinessView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/businesses", map[string]any{
		"template_id": templateID,
	}, &out)
	return out, err
}

func (c *Client) Upgrade(ctx context.Context, templateID int64, track string) (econ.BusinessView, error) {
	var out econ.BusinessView
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/businesses/%d/upgrades", templateID), map[string]any{
		"track": track,
	}, &out)
	return out, err
}

func (c *Client) UpgradeCost(ctx context.Context, templateID int64, track string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/businesses/%d/upgrades/%s/cost", templateID, url.PathEscape(track)), nil, &out)
	return out, err
}

func (c *Client) StartProject(ctx context.Context, templateID int64, name string) (econ.BusinessView, error) {
	var out econ.BusinessView
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/businesses/%d/projects/start", templateID), map[string]any{
		"name": name,
	}, &out)
	return out, err
}

func (c *Client) CancelProject(ctx context.Context, templateID int64) (econ.BusinessView, error) {
	var out econ.BusinessView
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/businesses/%d/projects/cancel", templateID), nil, &out)
	return out, err
}

func (c *Client) DarkSide(ctx context.Context, templateID int64) (econ.BusinessView, error) {
	var out econ.BusinessView
	err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/v1/businesses/%d/darkside", templateID), nil, &out)
	return out, err
}

func (c *Client) Save(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/save", nil, &out)
	return out, err
}

func (c *Client) Load(ctx context.Context) (econ.StateView, error) {
	var out econ.StateView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/load", nil, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
