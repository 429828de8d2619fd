package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devstudio/internal/game"
	"devstudio/internal/store"
)

// APIError is a non-2xx reply from the studio server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

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

type StateView struct {
	game.State
	NetWorth       float64 `json:"net_worth"`
	PortfolioValue float64 `json:"portfolio_value"`
	HireCost       float64 `json:"hire_cost"`
}

func (c *Client) State(ctx context.Context) (StateView, error) {
	var out StateView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out)
	return out, err
}

func (c *Client) SetSpeed(ctx context.Context, speed int) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/speed", map[string]any{"speed": speed}, nil)
}

func (c *Client) Candidates(ctx context.Context) ([]game.Candidate, float64, error) {
	var out struct {
		Candidates []game.Candidate `json:"candidates"`
		HireCost   float64          `json:"hire_cost"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/candidates", nil, &out)
	return out.Candidates, out.HireCost, err
}

func (c *Client) Hire(ctx context.Context, candidateID string) (game.Employee, error) {
	var out game.Employee
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/employees", map[string]any{"candidate_id": candidateID}, &out)
	return out, err
}

func (c *Client) Fire(ctx context.Context, employeeID string) error {
	return c.jsonRequest(ctx, http.MethodDelete, "/v1/employees/"+url.PathEscape(employeeID), nil, nil)
}

func (c *Client) Assign(ctx context.Context, employeeID, projectID string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/employees/"+url.PathEscape(employeeID)+"/assign", map[string]any{
		"project_id": projectID,
	}, nil)
}

func (c *Client) CreateProject(ctx context.Context, in store.ProjectInput) (game.Project, error) {
	var out game.Project
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/projects", in, &out)
	return out, err
}

func (c *Client) StartProject(ctx context.Context, projectID string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/projects/"+url.PathEscape(projectID)+"/start", nil, nil)
}

func (c *Client) UnlockPlatform(ctx context.Context, platform string) (float64, error) {
	var out struct {
		Cost float64 `json:"cost"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/platforms", map[string]any{"platform": platform}, &out)
	return out.Cost, err
}

func (c *Client) Stocks(ctx context.Context) ([]game.Stock, []game.MarketEvent, error) {
	var out struct {
		Stocks       []game.Stock       `json:"stocks"`
		MarketEvents []game.MarketEvent `json:"market_events"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/stocks", nil, &out)
	return out.Stocks, out.MarketEvents, err
}

func (c *Client) PlaceOrder(ctx context.Context, stockID, side string, qty int64) (store.TradeResult, error) {
	var out store.TradeResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/orders", map[string]any{
		"stock_id": stockID,
		"side":     side,
		"quantity": qty,
	}, &out)
	return out, err
}

func (c *Client) AddAlert(ctx context.Context, stockID string, target float64, dir game.AlertDirection) (game.PriceAlert, error) {
	var out game.PriceAlert
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/alerts", map[string]any{
		"stock_id":  stockID,
		"target":    target,
		"direction": dir,
	}, &out)
	return out, err
}

func (c *Client) Watch(ctx context.Context, stockID string) error {
	return c.jsonRequest(ctx, http.MethodPut, "/v1/watchlist/"+url.PathEscape(stockID), nil, nil)
}

func (c *Client) Notifications(ctx context.Context) ([]game.Notification, error) {
	var out struct {
		Notifications []game.Notification `json:"notifications"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/notifications", nil, &out)
	return out.Notifications, err
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
		msg := strings.TrimSpace(string(raw))
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
