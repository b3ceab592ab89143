package engine

import (
	"log/slog"
	"strings"

	"automata-hq/triton/pkg/rules"
)

// conditionMatcher evaluates a rule's trigger conditions against an event.
// Invoked only after the permission filter passed and the trigger types agree.
type conditionMatcher struct {
	logger *slog.Logger
}

func newConditionMatcher() *conditionMatcher {
	return &conditionMatcher{
		logger: slog.Default().With("component", "engine.matcher"),
	}
}

// matches reports whether the event satisfies the rule's conditions.
// Malformed condition data (a populated variant that does not belong to the
// rule's trigger type) is a non-match, logged at warning level.
func (m *conditionMatcher) matches(rule *rules.Rule, event *rules.TriggerEvent) bool {
	if rule.TriggerType != event.TriggerType {
		return false
	}
	if malformed(rule) {
		m.logger.Warn("rule has condition data for the wrong trigger type, treating as non-match",
			"rule_id", rule.ID,
			"trigger_type", rule.TriggerType,
		)
		return false
	}

	switch rule.TriggerType {
	case rules.TriggerReaction:
		// An empty emoji set matches any emoji.
		if len(rule.Conditions.AllowedEmojis) == 0 {
			return true
		}
		for _, emoji := range rule.Conditions.AllowedEmojis {
			if emoji == event.Emoji {
				return true
			}
		}
		return false

	case rules.TriggerKeyword:
		content := strings.ToLower(event.Content)
		for _, keyword := range rule.Conditions.Keywords {
			if keyword != "" && strings.Contains(content, strings.ToLower(keyword)) {
				return true
			}
		}
		return false

	case rules.TriggerHashtag:
		for _, tag := range rule.Conditions.Tags {
			if event.HasHashtag(tag) {
				return true
			}
		}
		return false

	case rules.TriggerMessage:
		return true
	}

	return false
}

// malformed reports whether the rule carries condition data belonging to a
// different trigger type. Load-time validation rejects these, but rules can
// reach the engine from stores populated before validation tightened.
func malformed(rule *rules.Rule) bool {
	c := rule.Conditions
	switch rule.TriggerType {
	case rules.TriggerReaction:
		return len(c.Keywords) > 0 || len(c.Tags) > 0
	case rules.TriggerKeyword:
		return len(c.AllowedEmojis) > 0 || len(c.Tags) > 0
	case rules.TriggerHashtag:
		return len(c.AllowedEmojis) > 0 || len(c.Keywords) > 0
	case rules.TriggerMessage:
		return !c.IsEmpty()
	}
	return true
}
