package rules

import (
	"strings"
	"time"
)

// TriggerType identifies the class of inbound occurrence a rule reacts to.
type TriggerType string

const (
	// TriggerMessage fires on any inbound message.
	TriggerMessage TriggerType = "message"

	// TriggerKeyword fires when message content contains a configured keyword.
	TriggerKeyword TriggerType = "keyword"

	// TriggerHashtag fires when message content mentions a configured hashtag.
	TriggerHashtag TriggerType = "hashtag"

	// TriggerReaction fires on an emoji reaction to a message.
	TriggerReaction TriggerType = "reaction"
)

// TriggerTypes lists all valid trigger types.
func TriggerTypes() []TriggerType {
	return []TriggerType{TriggerMessage, TriggerKeyword, TriggerHashtag, TriggerReaction}
}

// Valid reports whether t is a known trigger type.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerMessage, TriggerKeyword, TriggerHashtag, TriggerReaction:
		return true
	}
	return false
}

// ActionType identifies the derived record a rule produces when it fires.
type ActionType string

const (
	// ActionCreateTask creates a task from the triggering message.
	ActionCreateTask ActionType = "create_task"

	// ActionCreateCalendarEvent creates a calendar event.
	ActionCreateCalendarEvent ActionType = "create_calendar_event"

	// ActionCreateBill creates a bill record.
	ActionCreateBill ActionType = "create_bill"

	// ActionCreateNote creates a free-form note.
	ActionCreateNote ActionType = "create_note"

	// ActionSendMessage sends a templated message back to the chat.
	ActionSendMessage ActionType = "send_message"

	// ActionAddLabel attaches a label to the triggering chat or message.
	ActionAddLabel ActionType = "add_label"
)

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	switch a {
	case ActionCreateTask, ActionCreateCalendarEvent, ActionCreateBill,
		ActionCreateNote, ActionSendMessage, ActionAddLabel:
		return true
	}
	return false
}

// ProducesDerivedEntity reports whether the action creates a
// single-entity-per-message artifact (task, calendar event, bill, note).
// Only these actions participate in update-instead-of-create resolution.
func (a ActionType) ProducesDerivedEntity() bool {
	switch a {
	case ActionCreateTask, ActionCreateCalendarEvent, ActionCreateBill, ActionCreateNote:
		return true
	}
	return false
}

// PerformerFilter is the authorization scope restricting which actor's event
// may fire a rule.
type PerformerFilter string

const (
	// PerformerAnyone allows any actor to fire the rule.
	PerformerAnyone PerformerFilter = "anyone"

	// PerformerOwnerOnly allows only the instance owner (or the rule creator,
	// accepted as an equivalent proof of ownership) to fire the rule.
	PerformerOwnerOnly PerformerFilter = "owner_only"

	// PerformerAllowList allows only explicitly listed actor identifiers.
	PerformerAllowList PerformerFilter = "allow_list"
)

// Valid reports whether f is a known performer filter.
func (f PerformerFilter) Valid() bool {
	switch f {
	case PerformerAnyone, PerformerOwnerOnly, PerformerAllowList:
		return true
	}
	return false
}

// Conditions is the tagged trigger-condition variant of a rule. Exactly one
// field may be populated, and it must match the rule's trigger type:
//
//   - TriggerReaction: AllowedEmojis (empty set means "match any emoji")
//   - TriggerKeyword:  Keywords (case-insensitive substring match)
//   - TriggerHashtag:  Tags (matched against the event's extracted hashtags)
//   - TriggerMessage:  all fields empty
type Conditions struct {
	// AllowedEmojis is the set of reaction emojis that fire the rule.
	AllowedEmojis []string `yaml:"allowed_emojis,omitempty" json:"allowedEmojis,omitempty"`

	// Keywords is the set of keywords matched case-insensitively against
	// message content.
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`

	// Tags is the set of hashtags (without the leading '#') matched against
	// the event's hashtag set.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// IsEmpty reports whether no condition variant is populated.
func (c Conditions) IsEmpty() bool {
	return len(c.AllowedEmojis) == 0 && len(c.Keywords) == 0 && len(c.Tags) == 0
}

// Rule is a configured automation unit.
type Rule struct {
	// ID is the opaque unique identifier of the rule.
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable rule name.
	Name string `yaml:"name" json:"name"`

	// IsActive gates evaluation: inactive rules are never evaluated.
	IsActive bool `yaml:"is_active" json:"isActive"`

	// Priority orders evaluation and audit reporting, higher first.
	// Ties are broken by most-recently-created first.
	Priority int `yaml:"priority" json:"priority"`

	// TriggerType is the class of event this rule reacts to.
	TriggerType TriggerType `yaml:"trigger_type" json:"triggerType"`

	// ScopeInstanceID, when set, restricts the rule to events from that
	// communication channel instance.
	ScopeInstanceID string `yaml:"scope_instance_id,omitempty" json:"scopeInstanceId,omitempty"`

	// PerformerFilter restricts which actors may fire the rule.
	PerformerFilter PerformerFilter `yaml:"performer_filter" json:"performerFilter"`

	// AllowedPerformerIDs is consulted only when PerformerFilter is
	// PerformerAllowList.
	AllowedPerformerIDs []string `yaml:"allowed_performer_ids,omitempty" json:"allowedPerformerIds,omitempty"`

	// Conditions is the trigger-condition variant keyed by TriggerType.
	Conditions Conditions `yaml:"conditions" json:"conditions"`

	// ActionType is the derived record produced when the rule fires.
	ActionType ActionType `yaml:"action_type" json:"actionType"`

	// ActionConfig maps string keys to template strings and literals
	// consumed by the action dispatcher. Values support the placeholders
	// documented in pkg/enrich.
	ActionConfig map[string]string `yaml:"action_config,omitempty" json:"actionConfig,omitempty"`

	// AllowUpdateExisting lets a recurring event for the same message update
	// the previously derived record instead of creating a duplicate.
	AllowUpdateExisting bool `yaml:"allow_update_existing" json:"allowUpdateExisting"`

	// CreatedBy is the actor identifier of the rule author.
	CreatedBy string `yaml:"created_by,omitempty" json:"createdBy,omitempty"`

	CreatedAt time.Time `yaml:"created_at,omitempty" json:"createdAt"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updatedAt"`
}

// AllowsPerformer reports whether actorID is in the rule's allow list.
func (r *Rule) AllowsPerformer(actorID string) bool {
	for _, id := range r.AllowedPerformerIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

// TriggerEvent is an ephemeral, non-persisted value describing one inbound
// occurrence. Event ingestion translates raw gateway payloads into this
// canonical shape; the engine never sees a wire format.
type TriggerEvent struct {
	// TriggerType is the class of this occurrence.
	TriggerType TriggerType `json:"triggerType"`

	// InstanceID identifies the communication channel instance.
	InstanceID string `json:"instanceId"`

	// ChatID identifies the conversation within the instance.
	ChatID string `json:"chatId"`

	// MessageID identifies the triggering message. For reactions this is the
	// reacted-to message, so recurring reactions share a MessageID.
	MessageID string `json:"messageId"`

	// QuotedMessageID is set when the triggering message quotes another.
	QuotedMessageID string `json:"quotedMessageId,omitempty"`

	// ActorID is the sender or reactor identifier.
	ActorID string `json:"actorId"`

	// OriginalActorID is, for reactions, the author of the reacted-to message.
	OriginalActorID string `json:"originalActorId,omitempty"`

	// SenderName is the actor's display name, when the gateway provides one.
	SenderName string `json:"senderName,omitempty"`

	// Content is the text body, possibly empty.
	Content string `json:"content"`

	// Emoji is set for reaction events.
	Emoji string `json:"emoji,omitempty"`

	// Hashtags is the pre-extracted hashtag set (without '#'), produced by
	// event ingestion from Content.
	Hashtags []string `json:"hashtags,omitempty"`

	// Timestamp is when the occurrence happened at the gateway.
	Timestamp time.Time `json:"timestamp"`

	// FromMe marks events generated by the instance's own account.
	FromMe bool `json:"fromMe"`
}

// HasHashtag reports whether tag is in the event's extracted hashtag set.
// Comparison is case-insensitive to match keyword semantics.
func (e *TriggerEvent) HasHashtag(tag string) bool {
	for _, t := range e.Hashtags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
