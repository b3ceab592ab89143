package server

import (
	"fmt"
	"regexp"
	"time"

	"automata-hq/triton/pkg/rules"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// eventRequest is the wire shape accepted by POST /v1/events.
type eventRequest struct {
	TriggerType     string    `json:"triggerType,omitempty"`
	InstanceID      string    `json:"instanceId"`
	ChatID          string    `json:"chatId"`
	MessageID       string    `json:"messageId"`
	QuotedMessageID string    `json:"quotedMessageId,omitempty"`
	ActorID         string    `json:"actorId"`
	OriginalActorID string    `json:"originalActorId,omitempty"`
	SenderName      string    `json:"senderName,omitempty"`
	Content         string    `json:"content,omitempty"`
	Emoji           string    `json:"emoji,omitempty"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
	FromMe          bool      `json:"fromMe,omitempty"`
}

// toEvent normalizes the payload into a canonical trigger event. Hashtags are
// extracted from content here; the engine only sees the pre-extracted set.
// A missing trigger type is inferred: reaction when an emoji is present,
// hashtag when content mentions one, plain message otherwise. Keyword events
// are never inferred because only rules know which keywords matter; the
// engine evaluates keyword rules against keyword-typed events the gateway
// marks explicitly.
func (r *eventRequest) toEvent() (*rules.TriggerEvent, error) {
	if r.InstanceID == "" {
		return nil, fmt.Errorf("instanceId is required")
	}
	if r.MessageID == "" {
		return nil, fmt.Errorf("messageId is required")
	}
	if r.ActorID == "" {
		return nil, fmt.Errorf("actorId is required")
	}

	hashtags := extractHashtags(r.Content)

	triggerType := rules.TriggerType(r.TriggerType)
	if r.TriggerType == "" {
		switch {
		case r.Emoji != "":
			triggerType = rules.TriggerReaction
		case len(hashtags) > 0:
			triggerType = rules.TriggerHashtag
		default:
			triggerType = rules.TriggerMessage
		}
	}
	if !triggerType.Valid() {
		return nil, fmt.Errorf("invalid trigger type: %q", r.TriggerType)
	}
	if triggerType == rules.TriggerReaction && r.Emoji == "" {
		return nil, fmt.Errorf("reaction events require an emoji")
	}

	timestamp := r.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return &rules.TriggerEvent{
		TriggerType:     triggerType,
		InstanceID:      r.InstanceID,
		ChatID:          r.ChatID,
		MessageID:       r.MessageID,
		QuotedMessageID: r.QuotedMessageID,
		ActorID:         r.ActorID,
		OriginalActorID: r.OriginalActorID,
		SenderName:      r.SenderName,
		Content:         r.Content,
		Emoji:           r.Emoji,
		Hashtags:        hashtags,
		Timestamp:       timestamp,
		FromMe:          r.FromMe,
	}, nil
}

// extractHashtags returns the hashtag names (without '#') mentioned in text.
func extractHashtags(text string) []string {
	if text == "" {
		return nil
	}
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
