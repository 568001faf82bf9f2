package analytics

import "time"

const (
	// TopicLinkCreated carries LinkCreatedEvent messages.
	TopicLinkCreated = "link.created"
	// TopicLinkAccessed carries LinkAccessedEvent messages.
	TopicLinkAccessed = "link.accessed"
)

// LinkCreatedEvent is emitted when a new link is registered.
type LinkCreatedEvent struct {
	EventID   string    `json:"eventId"`
	Link      string    `json:"link"`
	Target    string    `json:"target"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// LinkAccessedEvent is emitted when a link resolves to a redirect.
type LinkAccessedEvent struct {
	EventID    string    `json:"eventId"`
	Link       string    `json:"link"`
	Target     string    `json:"target"`
	Clicks     int64     `json:"clicks"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
}
