package dto

import "time"

type NotificationResponse struct {
	ID         int64     `json:"id"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	ForwardURL string    `json:"forwardUrl"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NotificationPage is the zero-indexed page envelope consumed by the
// notification center. Last marks the terminal page.
type NotificationPage struct {
	Content       []NotificationResponse `json:"content"`
	TotalPages    int                    `json:"totalPages"`
	TotalElements int64                  `json:"totalElements"`
	Number        int                    `json:"number"`
	Size          int                    `json:"size"`
	Last          bool                   `json:"last"`
}

func NewNotificationPage(content []NotificationResponse, page, size int, total int64) NotificationPage {
	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}

	return NotificationPage{
		Content:       content,
		TotalPages:    totalPages,
		TotalElements: total,
		Number:        page,
		Size:          size,
		Last:          (page+1)*size >= int(total),
	}
}
