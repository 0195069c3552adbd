package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/placementcell/portal/internal/models"
)

// ListNotifications returns the current user's notifications
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := c.Do(ctx, "/api/notifications/user", RequestOptions{}, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := "/api/notifications/" + url.PathEscape(notificationID) + "/read"
	return c.Do(ctx, path, RequestOptions{Method: http.MethodPatch}, nil)
}

// MarkAllNotificationsRead marks every notification of the user as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.Do(ctx, "/api/notifications/read-all", RequestOptions{Method: http.MethodPatch}, nil)
}

// UnreadCount counts unread notifications
func UnreadCount(notifications []models.Notification) int {
	n := 0
	for _, notification := range notifications {
		if !notification.Read {
			n++
		}
	}
	return n
}
