package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"automata-hq/triton/pkg/rules"
)

const goodRuleFile = `
owners:
  inst1: "15550001111@s.whatsapp.net"

rules:
  - id: task-on-check
    name: Create task on checkmark
    trigger_type: reaction
    conditions:
      allowed_emojis: ["✅"]
    action_type: create_task
    action_config:
      title: "{{content}}"
    allow_update_existing: true

  - id: bill-keyword
    name: Bill on factura keyword
    priority: 5
    trigger_type: keyword
    conditions: ["factura", "invoice"]
    action_type: create_bill
    action_config:
      currency: MXN
`

const badRuleFile = `
rules:
  - id: broken
    name: Keyword rule without keywords
    trigger_type: keyword
    action_type: create_task
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

// TestFileSource_Load tests loading a valid file with both condition forms
func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.yaml", goodRuleFile)

	source := NewFileSource(path, nil)
	contents, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(contents.Rules) != 2 {
		t.Fatalf("Load() returned %d rules, want 2", len(contents.Rules))
	}
	if contents.Owners["inst1"] != "15550001111@s.whatsapp.net" {
		t.Errorf("owner mapping = %q", contents.Owners["inst1"])
	}

	byID := make(map[string]*rules.Rule)
	for _, r := range contents.Rules {
		byID[r.ID] = r
	}

	reaction := byID["task-on-check"]
	if reaction == nil {
		t.Fatal("task-on-check rule missing")
	}
	if !reaction.IsActive {
		t.Error("is_active should default to true")
	}
	if reaction.PerformerFilter != rules.PerformerAnyone {
		t.Errorf("performer filter should default to anyone, got %s", reaction.PerformerFilter)
	}
	if len(reaction.Conditions.AllowedEmojis) != 1 || reaction.Conditions.AllowedEmojis[0] != "✅" {
		t.Errorf("reaction conditions = %+v", reaction.Conditions)
	}

	// Legacy bare-array conditions land in the trigger type's own variant.
	keyword := byID["bill-keyword"]
	if keyword == nil {
		t.Fatal("bill-keyword rule missing")
	}
	if len(keyword.Conditions.Keywords) != 2 {
		t.Errorf("keyword conditions = %+v", keyword.Conditions)
	}
}

// TestFileSource_LoadDirectory tests that invalid files are skipped, not fatal
func TestFileSource_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", goodRuleFile)
	writeFile(t, dir, "bad.yaml", badRuleFile)
	writeFile(t, dir, "ignored.txt", "not yaml")

	source := NewFileSource(dir, nil)
	contents, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(contents.Rules) != 2 {
		t.Errorf("Load() returned %d rules, want 2 (bad file skipped)", len(contents.Rules))
	}
}

// TestFileSource_Lint tests that lint surfaces every validation error
func TestFileSource_Lint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", goodRuleFile)
	writeFile(t, dir, "bad.yaml", badRuleFile)

	source := NewFileSource(dir, nil)
	errs := source.Lint(context.Background())
	if len(errs) != 1 {
		t.Fatalf("Lint() returned %d errors, want 1: %v", len(errs), errs)
	}
}
