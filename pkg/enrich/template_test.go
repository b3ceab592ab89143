package enrich

import (
	"testing"

	"automata-hq/triton/pkg/rules"
)

// TestInterpolate tests placeholder substitution and fallbacks.
func TestInterpolate(t *testing.T) {
	event := &rules.TriggerEvent{
		TriggerType: rules.TriggerReaction,
		InstanceID:  "inst-1",
		ChatID:      "chat-1",
		MessageID:   "msg-1",
		ActorID:     "5511999@s.whatsapp.net",
		SenderName:  "Ana",
		Content:     "pay the electricity bill",
		Emoji:       "💸",
	}

	tests := []struct {
		name     string
		template string
		event    *rules.TriggerEvent
		want     string
	}{
		{
			name:     "all fields present",
			template: "Task from {{sender}} ({{senderJid}}): {{content}}",
			event:    event,
			want:     "Task from Ana (5511999@s.whatsapp.net): pay the electricity bill",
		},
		{
			name:     "emoji and trigger type",
			template: "{{emoji}} via {{triggerType}} in {{chatId}}",
			event:    event,
			want:     "💸 via reaction in chat-1",
		},
		{
			name:     "instance and message",
			template: "{{instanceId}}/{{messageId}}",
			event:    event,
			want:     "inst-1/msg-1",
		},
		{
			name:     "empty content falls back",
			template: "Note: {{content}}",
			event:    &rules.TriggerEvent{TriggerType: rules.TriggerMessage},
			want:     "Note: No content",
		},
		{
			name:     "missing sender falls back",
			template: "{{sender}} reacted {{emoji}}",
			event:    &rules.TriggerEvent{TriggerType: rules.TriggerReaction},
			want:     "Unknown reacted Unknown",
		},
		{
			name:     "unknown placeholder left untouched",
			template: "{{sender}} said {{nonsense}}",
			event:    event,
			want:     "Ana said {{nonsense}}",
		},
		{
			name:     "no placeholders passes through",
			template: "fixed title",
			event:    event,
			want:     "fixed title",
		},
		{
			name:     "empty template",
			template: "",
			event:    event,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpolate(tt.template, tt.event)
			if got != tt.want {
				t.Errorf("Interpolate(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

// TestDomainForAction tests the action-to-domain mapping.
func TestDomainForAction(t *testing.T) {
	tests := []struct {
		action rules.ActionType
		domain Domain
		ok     bool
	}{
		{rules.ActionCreateTask, DomainTask, true},
		{rules.ActionCreateCalendarEvent, DomainCalendar, true},
		{rules.ActionCreateBill, DomainBill, true},
		{rules.ActionCreateNote, "", false},
		{rules.ActionSendMessage, "", false},
		{rules.ActionAddLabel, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			domain, ok := DomainForAction(tt.action)
			if domain != tt.domain || ok != tt.ok {
				t.Errorf("DomainForAction(%s) = (%s, %v), want (%s, %v)",
					tt.action, domain, ok, tt.domain, tt.ok)
			}
		})
	}
}
