package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"automata-hq/triton/pkg/rules"
)

// FileContents is the result of loading operator-authored rule files.
type FileContents struct {
	// Rules is the validated rule set.
	Rules []*rules.Rule

	// Owners maps instance IDs to owner actor IDs.
	Owners map[string]string
}

// FileSource loads rules and instance ownership from YAML files on disk.
// The path can be a single file or a directory; directories are walked and
// every .yaml/.yml file is loaded. Files that fail to parse or validate are
// skipped with a warning so one bad file cannot take down the whole set.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a new file-based rule source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger}
}

// Load loads all rules from the configured path.
func (s *FileSource) Load(ctx context.Context) (*FileContents, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	contents := &FileContents{Owners: make(map[string]string)}

	if info.IsDir() {
		err = filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			ext := filepath.Ext(path)
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}
			if err := s.loadFile(path, contents); err != nil {
				s.logger.Warn("failed to load rule file, skipping",
					"path", path,
					"error", err,
				)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
		}
	} else {
		if err := s.loadFile(s.path, contents); err != nil {
			return nil, err
		}
	}

	s.logger.Info("loaded rules from source",
		"path", s.path,
		"rule_count", len(contents.Rules),
		"instance_count", len(contents.Owners),
	)

	return contents, nil
}

// Lint loads every rule file under the path and returns all parse and
// validation errors without applying anything. Used by the validate command.
func (s *FileSource) Lint(ctx context.Context) []error {
	info, err := os.Stat(s.path)
	if err != nil {
		return []error{fmt.Errorf("failed to stat path %q: %w", s.path, err)}
	}

	var errs []error
	lintOne := func(path string) {
		if fileErrs := lintFile(path); len(fileErrs) > 0 {
			errs = append(errs, fileErrs...)
		}
	}

	if !info.IsDir() {
		lintOne(s.path)
		return errs
	}

	walkErr := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
			lintOne(path)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return errs
}

// ruleFile is the YAML document shape for operator-authored rule files.
type ruleFile struct {
	Owners map[string]string `yaml:"owners"`
	Rules  []ruleSpec        `yaml:"rules"`
}

// ruleSpec is the wire form of one rule. Conditions is deliberately untyped:
// both the keyed object form and the legacy bare-array form are accepted and
// normalized before validation.
type ruleSpec struct {
	ID                  string            `yaml:"id"`
	Name                string            `yaml:"name"`
	IsActive            *bool             `yaml:"is_active"`
	Priority            int               `yaml:"priority"`
	TriggerType         string            `yaml:"trigger_type"`
	ScopeInstanceID     string            `yaml:"scope_instance_id"`
	PerformerFilter     string            `yaml:"performer_filter"`
	AllowedPerformerIDs []string          `yaml:"allowed_performer_ids"`
	Conditions          any               `yaml:"conditions"`
	ActionType          string            `yaml:"action_type"`
	ActionConfig        map[string]string `yaml:"action_config"`
	AllowUpdateExisting bool              `yaml:"allow_update_existing"`
	CreatedBy           string            `yaml:"created_by"`
	CreatedAt           time.Time         `yaml:"created_at"`
}

// loadFile parses one rule file and appends its contents.
// The whole file is rejected if any rule in it is invalid.
func (s *FileSource) loadFile(path string, contents *FileContents) error {
	parsed, err := parseRuleFile(path)
	if err != nil {
		return err
	}

	for id, owner := range parsed.Owners {
		contents.Owners[id] = owner
	}
	contents.Rules = append(contents.Rules, parsed.Rules...)
	return nil
}

// parsedFile is the validated content of one rule file.
type parsedFile struct {
	Owners map[string]string
	Rules  []*rules.Rule
}

func parseRuleFile(path string) (*parsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	out := &parsedFile{Owners: doc.Owners}
	for i, spec := range doc.Rules {
		rule, err := spec.toRule()
		if err != nil {
			return nil, fmt.Errorf("%s: rule %d (%s): %w", path, i, spec.ID, err)
		}
		out.Rules = append(out.Rules, rule)
	}
	return out, nil
}

// lintFile returns every error in one rule file instead of stopping at the
// first, so operators see the full picture.
func lintFile(path string) []error {
	data, err := os.ReadFile(path)
	if err != nil {
		return []error{fmt.Errorf("failed to read file %q: %w", path, err)}
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []error{fmt.Errorf("failed to parse %q: %w", path, err)}
	}

	var errs []error
	for i, spec := range doc.Rules {
		if _, err := spec.toRule(); err != nil {
			errs = append(errs, fmt.Errorf("%s: rule %d (%s): %w", path, i, spec.ID, err))
		}
	}
	return errs
}

// toRule normalizes and validates one rule spec.
func (spec ruleSpec) toRule() (*rules.Rule, error) {
	active := true
	if spec.IsActive != nil {
		active = *spec.IsActive
	}

	performerFilter := rules.PerformerFilter(spec.PerformerFilter)
	if spec.PerformerFilter == "" {
		performerFilter = rules.PerformerAnyone
	}

	createdAt := spec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	conditions, err := rules.NormalizeConditions(rules.TriggerType(spec.TriggerType), spec.Conditions)
	if err != nil {
		return nil, err
	}

	rule := &rules.Rule{
		ID:                  spec.ID,
		Name:                spec.Name,
		IsActive:            active,
		Priority:            spec.Priority,
		TriggerType:         rules.TriggerType(spec.TriggerType),
		ScopeInstanceID:     spec.ScopeInstanceID,
		PerformerFilter:     performerFilter,
		AllowedPerformerIDs: spec.AllowedPerformerIDs,
		Conditions:          conditions,
		ActionType:          rules.ActionType(spec.ActionType),
		ActionConfig:        spec.ActionConfig,
		AllowUpdateExisting: spec.AllowUpdateExisting,
		CreatedBy:           spec.CreatedBy,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}
