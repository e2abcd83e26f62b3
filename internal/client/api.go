package client

import (
	"context"
	"fmt"
	"time"

	"issuehub/internal/httpapi/dto"

	"github.com/go-resty/resty/v2"
)

// TokenProvider yields the current access token, empty when logged out.
type TokenProvider func() string

// APIClient is the foreground HTTP client. Auth handling lives in a single
// request interceptor; callers just make calls.
type APIClient struct {
	http *resty.Client
}

func NewAPIClient(baseURL string, tokens TokenProvider) *APIClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if token := tokens(); token != "" {
			req.SetHeader("Authorization", "Bearer "+token)
		}
		return nil
	})

	return &APIClient{http: c}
}

func (c *APIClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/login")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("login failed with status: %s", resp.Status())
	}
	return &out, nil
}

func (c *APIClient) Register(ctx context.Context, req dto.RegisterRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/register")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("registration failed with status: %s", resp.Status())
	}
	return nil
}

// RegisterSubscription submits a device push subscription to the backend.
func (c *APIClient) RegisterSubscription(ctx context.Context, req dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	var out dto.SubscribeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/push/subscribe")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("subscription registration failed with status: %s", resp.Status())
	}
	return &out, nil
}

func (c *APIClient) UnregisterSubscription(ctx context.Context, endpoint string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(dto.UnsubscribeRequest{Endpoint: endpoint}).
		Delete("/push/subscribe")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("unsubscribe failed with status: %s", resp.Status())
	}
	return nil
}

func (c *APIClient) FetchNotifications(ctx context.Context, page, size int) (*dto.NotificationPage, error) {
	var out dto.NotificationPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetQueryParam("size", fmt.Sprintf("%d", size)).
		SetResult(&out).
		Get("/notifications")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("notification fetch failed with status: %s", resp.Status())
	}
	return &out, nil
}

func (c *APIClient) MarkNotificationRead(ctx context.Context, id int64) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Patch(fmt.Sprintf("/notifications/%d/read", id))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("mark-as-read failed with status: %s", resp.Status())
	}
	return nil
}

func (c *APIClient) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&count).
		Get("/notifications/unread-count")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("unread count fetch failed with status: %s", resp.Status())
	}
	return count, nil
}
