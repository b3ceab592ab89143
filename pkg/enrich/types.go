package enrich

import (
	"context"
	"time"

	"automata-hq/triton/pkg/rules"
)

// Domain selects which extraction profile the service applies.
type Domain string

const (
	// DomainTask extracts title, description, priority, due date and tags.
	DomainTask Domain = "task"

	// DomainCalendar extracts title, times, location and meeting-link intent.
	DomainCalendar Domain = "calendar"

	// DomainBill extracts vendor, amount, currency and category.
	DomainBill Domain = "bill"
)

// DomainForAction maps an action type to its extraction domain.
// Actions without a domain (notes, labels, messages) skip enrichment.
func DomainForAction(action rules.ActionType) (Domain, bool) {
	switch action {
	case rules.ActionCreateTask:
		return DomainTask, true
	case rules.ActionCreateCalendarEvent:
		return DomainCalendar, true
	case rules.ActionCreateBill:
		return DomainBill, true
	default:
		return "", false
	}
}

// Request carries the message content to enrich plus context the extractor
// can use (who sent it, in which chat, what triggered the rule).
type Request struct {
	Domain      Domain            `json:"domain"`
	Content     string            `json:"content"`
	SenderName  string            `json:"senderName,omitempty"`
	ChatID      string            `json:"chatId,omitempty"`
	TriggerType rules.TriggerType `json:"triggerType"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Result holds whatever fields the extractor managed to pull out. All fields
// are optional; the dispatcher overlays them on template defaults and the
// rule's action config fills the rest.
type Result struct {
	// Common fields.
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Task fields.
	Priority string     `json:"priority,omitempty"`
	DueDate  *time.Time `json:"dueDate,omitempty"`

	// Calendar fields.
	StartTime        *time.Time `json:"startTime,omitempty"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	Location         string     `json:"location,omitempty"`
	NeedsMeetingLink bool       `json:"needsMeetingLink,omitempty"`

	// Bill fields.
	Vendor   string  `json:"vendor,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Category string  `json:"category,omitempty"`

	// Confidence in [0, 1]. Zero means the extractor gave up.
	Confidence float64 `json:"confidence"`
}

// Service extracts structured fields from message content.
type Service interface {
	// Enrich returns extracted fields for the request. Implementations must
	// honor ctx cancellation; the engine bounds every call with a timeout.
	Enrich(ctx context.Context, req *Request) (*Result, error)

	// Close releases service resources.
	Close() error
}

// NoopService is a Service that extracts nothing. Used when no enrichment
// backend is configured; dispatch then relies entirely on templates and
// action config.
type NoopService struct{}

// Enrich returns an empty result.
func (NoopService) Enrich(ctx context.Context, req *Request) (*Result, error) {
	return &Result{}, nil
}

// Close is a no-op.
func (NoopService) Close() error { return nil }
