package dto

import (
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/utils"
)

// NotificationListResponse represents one page of a user's inbox
type NotificationListResponse struct {
	Notifications []models.Notification    `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}
