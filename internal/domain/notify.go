package domain

import "context"

// События, о которых можно уведомлять
const EventFileAdded = "file_added"

// Доставка уведомлений (best-effort с точки зрения загрузки)
type Notifier interface {
	IsEventEnabled(event string) bool
	SendAttachmentsAdded(ctx context.Context, atts []Attachment) error
}
