package rules

import (
	"strings"
	"testing"
	"time"
)

// validRule returns a minimal valid rule that tests mutate per case.
func validRule() *Rule {
	return &Rule{
		ID:              "r1",
		Name:            "test rule",
		IsActive:        true,
		TriggerType:     TriggerReaction,
		PerformerFilter: PerformerAnyone,
		Conditions:      Conditions{AllowedEmojis: []string{"✅"}},
		ActionType:      ActionCreateTask,
		CreatedAt:       time.Now(),
	}
}

// TestRuleValidate_ConditionVariants tests the exactly-one-variant invariant
func TestRuleValidate_ConditionVariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Rule)
		wantErr string
	}{
		{
			name:   "valid reaction rule",
			mutate: func(r *Rule) {},
		},
		{
			name: "reaction with empty emoji set is valid (match any)",
			mutate: func(r *Rule) {
				r.Conditions = Conditions{}
			},
		},
		{
			name: "reaction carrying keywords is rejected",
			mutate: func(r *Rule) {
				r.Conditions = Conditions{AllowedEmojis: []string{"✅"}, Keywords: []string{"x"}}
			},
			wantErr: "may only carry allowed_emojis",
		},
		{
			name: "keyword rule requires keywords",
			mutate: func(r *Rule) {
				r.TriggerType = TriggerKeyword
				r.Conditions = Conditions{}
			},
			wantErr: "requires at least one keyword",
		},
		{
			name: "keyword rule with keywords is valid",
			mutate: func(r *Rule) {
				r.TriggerType = TriggerKeyword
				r.Conditions = Conditions{Keywords: []string{"factura"}}
			},
		},
		{
			name: "hashtag rule requires tags",
			mutate: func(r *Rule) {
				r.TriggerType = TriggerHashtag
				r.Conditions = Conditions{}
			},
			wantErr: "requires at least one tag",
		},
		{
			name: "message rule must not carry conditions",
			mutate: func(r *Rule) {
				r.TriggerType = TriggerMessage
				r.Conditions = Conditions{Keywords: []string{"x"}}
			},
			wantErr: "must not carry conditions",
		},
		{
			name: "message rule without conditions is valid",
			mutate: func(r *Rule) {
				r.TriggerType = TriggerMessage
				r.Conditions = Conditions{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(r)

			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestRuleValidate_Enums tests rejection of unknown enum values
func TestRuleValidate_Enums(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Rule)
		wantErr string
	}{
		{
			name:    "unknown trigger type",
			mutate:  func(r *Rule) { r.TriggerType = "poke" },
			wantErr: `unknown trigger type "poke"`,
		},
		{
			name:    "unknown action type",
			mutate:  func(r *Rule) { r.ActionType = "foo" },
			wantErr: `unknown action type "foo"`,
		},
		{
			name:    "unknown performer filter",
			mutate:  func(r *Rule) { r.PerformerFilter = "vips" },
			wantErr: `unknown performer filter "vips"`,
		},
		{
			name: "allow_list without performer ids",
			mutate: func(r *Rule) {
				r.PerformerFilter = PerformerAllowList
				r.AllowedPerformerIDs = nil
			},
			wantErr: "requires at least one performer id",
		},
		{
			name:    "missing id",
			mutate:  func(r *Rule) { r.ID = "" },
			wantErr: "missing id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(r)

			err := r.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestActionTypeProducesDerivedEntity tests the derived-entity classification
func TestActionTypeProducesDerivedEntity(t *testing.T) {
	derived := []ActionType{ActionCreateTask, ActionCreateCalendarEvent, ActionCreateBill, ActionCreateNote}
	for _, a := range derived {
		if !a.ProducesDerivedEntity() {
			t.Errorf("%s.ProducesDerivedEntity() = false, want true", a)
		}
	}

	for _, a := range []ActionType{ActionSendMessage, ActionAddLabel, "foo"} {
		if a.ProducesDerivedEntity() {
			t.Errorf("%s.ProducesDerivedEntity() = true, want false", a)
		}
	}
}
