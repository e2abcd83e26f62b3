package client

import (
	"context"
	"sync"

	"issuehub/internal/httpapi/dto"
)

// DefaultPageSize matches the server's notification page size.
const DefaultPageSize = 5

// NotificationFetcher is the slice of the API the center consumes.
// *APIClient satisfies it.
type NotificationFetcher interface {
	FetchNotifications(ctx context.Context, page, size int) (*dto.NotificationPage, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context) (int64, error)
}

// NotificationCenter accumulates pages of notifications for display.
// Page zero replaces the list, later pages append; a failed fetch leaves the
// accumulated list untouched.
type NotificationCenter struct {
	mu sync.Mutex

	api      NotificationFetcher
	pageSize int

	items    []dto.NotificationResponse
	nextPage int
	hasNext  bool
	unread   int64
}

func NewNotificationCenter(api NotificationFetcher, pageSize int) *NotificationCenter {
	return &NotificationCenter{api: api, pageSize: pageSize, hasNext: true}
}

func (c *NotificationCenter) Items() []dto.NotificationResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]dto.NotificationResponse, len(c.items))
	copy(out, c.items)
	return out
}

func (c *NotificationCenter) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasNext
}

func (c *NotificationCenter) Unread() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Refresh reloads from the first page, dropping everything accumulated.
func (c *NotificationCenter) Refresh(ctx context.Context) error {
	return c.load(ctx, 0)
}

// LoadMore appends the next page. No-op once the terminal page was seen.
func (c *NotificationCenter) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if !c.hasNext {
		c.mu.Unlock()
		return nil
	}
	page := c.nextPage
	c.mu.Unlock()

	return c.load(ctx, page)
}

func (c *NotificationCenter) load(ctx context.Context, page int) error {
	resp, err := c.api.FetchNotifications(ctx, page, c.pageSize)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if page == 0 {
		c.items = resp.Content
	} else {
		c.items = append(c.items, resp.Content...)
	}
	c.nextPage = page + 1
	c.hasNext = !resp.Last
	return nil
}

// RefreshUnread pulls the authoritative unread count from the backend.
func (c *NotificationCenter) RefreshUnread(ctx context.Context) error {
	count, err := c.api.UnreadCount(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unread = count
	c.mu.Unlock()
	return nil
}

// Open marks the notification read and returns its forward URL. The mark is
// pessimistic: if the backend call fails, nothing changes locally and no URL
// is returned, so an unread notification never silently reads itself.
func (c *NotificationCenter) Open(ctx context.Context, id int64) (string, error) {
	if err := c.api.MarkNotificationRead(ctx, id); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	forwardURL := ""
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if !c.items[i].IsRead {
			c.items[i].IsRead = true
			if c.unread > 0 {
				c.unread--
			}
		}
		forwardURL = c.items[i].ForwardURL
		break
	}
	return forwardURL, nil
}
