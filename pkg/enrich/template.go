package enrich

import (
	"strings"

	"automata-hq/triton/pkg/rules"
)

// Placeholder fallbacks used when the event field is empty.
const (
	fallbackUnknown = "Unknown"
	fallbackContent = "No content"
)

// Interpolate substitutes event placeholders in a template string. Supported
// placeholders:
//
//	{{content}}     message text ("No content" when empty)
//	{{sender}}      actor display name ("Unknown" when absent)
//	{{senderJid}}   actor identifier
//	{{chatId}}      conversation identifier
//	{{messageId}}   triggering message identifier
//	{{emoji}}       reaction emoji
//	{{instanceId}}  channel instance identifier
//	{{triggerType}} trigger type name
//
// Unknown placeholders are left untouched so config typos stay visible in the
// produced record instead of silently vanishing.
func Interpolate(template string, event *rules.TriggerEvent) string {
	if template == "" || !strings.Contains(template, "{{") {
		return template
	}

	replacer := strings.NewReplacer(
		"{{content}}", orFallback(event.Content, fallbackContent),
		"{{sender}}", orFallback(event.SenderName, fallbackUnknown),
		"{{senderJid}}", orFallback(event.ActorID, fallbackUnknown),
		"{{chatId}}", orFallback(event.ChatID, fallbackUnknown),
		"{{messageId}}", orFallback(event.MessageID, fallbackUnknown),
		"{{emoji}}", orFallback(event.Emoji, fallbackUnknown),
		"{{instanceId}}", orFallback(event.InstanceID, fallbackUnknown),
		"{{triggerType}}", orFallback(string(event.TriggerType), fallbackUnknown),
	)
	return replacer.Replace(template)
}

func orFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
