package entity

import "time"

// EntityType identifies the kind of derived record a link points at.
type EntityType string

const (
	TypeTask          EntityType = "task"
	TypeCalendarEvent EntityType = "calendar_event"
	TypeBill          EntityType = "bill"
	TypeNote          EntityType = "note"
)

// TaskPriority is the urgency level of a task. Levels are ordered so that
// updates can escalate monotonically and never downgrade.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Rank returns the ordering of the priority level, higher is more urgent.
// Unknown values rank below "low" so they never win an escalation.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

// Source identifies the message a derived record originated from.
type Source struct {
	InstanceID string `json:"instanceId"`
	ChatID     string `json:"chatId"`
	MessageID  string `json:"messageId"`
	ActorID    string `json:"actorId"`
}

// Task is a to-do item derived from a triggering message.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Source      Source       `json:"source"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CalendarEvent is a scheduled event derived from a triggering message.
type CalendarEvent struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Location         string    `json:"location,omitempty"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Attendees        []string  `json:"attendees,omitempty"`
	NeedsMeetingLink bool      `json:"needsMeetingLink"`
	Source           Source    `json:"source"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Bill is a payable derived from a triggering message.
type Bill struct {
	ID          string     `json:"id"`
	Vendor      string     `json:"vendor"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Source      Source     `json:"source"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Note is a free-form note derived from a triggering message.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Label is a tag attached to a chat or message by an add_label action.
type Label struct {
	ID         string    `json:"id"`
	InstanceID string    `json:"instanceId"`
	ChatID     string    `json:"chatId"`
	MessageID  string    `json:"messageId,omitempty"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LinkType distinguishes the initial trigger link from later update links.
type LinkType string

const (
	// LinkTrigger ties a derived record to the message that created it.
	// At most one trigger link exists per (triggering message, rule).
	LinkTrigger LinkType = "trigger"

	// LinkUpdate records a recurrence of the triggering message that was
	// merged into the existing derived record instead of creating a new one.
	LinkUpdate LinkType = "update"
)

// DerivedLink ties a derived record back to its triggering message.
type DerivedLink struct {
	ID                  string     `json:"id"`
	DerivedEntityID     string     `json:"derivedEntityId"`
	EntityType          EntityType `json:"entityType"`
	RuleID              string     `json:"ruleId"`
	TriggeringMessageID string     `json:"triggeringMessageId"`
	InstanceID          string     `json:"instanceId"`
	LinkType            LinkType   `json:"linkType"`
	CreatedAt           time.Time  `json:"createdAt"`
}
