package redact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"go.uber.org/zap"
)

const defaultMaskGlyph = '█'

// Engine performs label-driven and pattern-driven PII masking. All rules are
// compiled once at construction; after that the engine is immutable and safe
// for concurrent use.
type Engine struct {
	labels   []labelRule
	patterns []patternRule
	enabled  map[string]bool
	glyph    rune
	config   config.RedactionConfig
}

// New creates a redaction engine from the built-in catalog. A malformed
// catalog entry or an unknown detector name is a configuration defect and
// fails construction rather than surfacing per call.
func New(cfg config.RedactionConfig, log *logger.Logger) (*Engine, error) {
	engine := &Engine{
		enabled: make(map[string]bool),
		glyph:   defaultMaskGlyph,
		config:  cfg,
	}

	if cfg.MaskGlyph != "" {
		runes := []rune(cfg.MaskGlyph)
		if len(runes) != 1 {
			return nil, fmt.Errorf("mask glyph must be a single character, got %q", cfg.MaskGlyph)
		}
		engine.glyph = runes[0]
	}

	if err := engine.compileLabels(); err != nil {
		return nil, fmt.Errorf("failed to compile label catalog: %w", err)
	}

	if err := engine.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile structural patterns: %w", err)
	}

	if err := engine.configureDetectors(cfg.Detectors); err != nil {
		return nil, fmt.Errorf("failed to configure detectors: %w", err)
	}

	log.Info("Redaction engine initialized",
		zap.Int("label_rules", len(engine.labels)),
		zap.Int("pattern_rules", len(engine.patterns)),
		zap.Int("enabled_patterns", engine.countEnabledPatterns()),
		zap.Bool("label_stage", cfg.Labels),
	)

	return engine, nil
}

// compileLabels builds one rule per catalog label, in catalog order.
// Case-insensitive compilation makes casing duplicates byte-identical, so
// exact duplicates are collapsed on first occurrence.
func (e *Engine) compileLabels() error {
	seen := make(map[string]bool, len(piiLabels))

	for _, label := range piiLabels {
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true

		expr := `(?i)(` + regexp.QuoteMeta(label) + `\s*[:\-–]\s*)([^\n\r]+)`
		pattern, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("label %q: %w", label, err)
		}

		e.labels = append(e.labels, labelRule{Label: key, Pattern: pattern})
	}

	return nil
}

// compilePatterns builds the structural rules in catalog order.
func (e *Engine) compilePatterns() error {
	for _, sp := range structuralPatterns {
		pattern, err := regexp.Compile(`(?i)` + sp.Expr)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", sp.Name, err)
		}
		e.patterns = append(e.patterns, patternRule{Name: sp.Name, Pattern: pattern})
	}
	return nil
}

// configureDetectors enables/disables structural detectors based on configuration
func (e *Engine) configureDetectors(detectors []string) error {
	for _, rule := range e.patterns {
		e.enabled[rule.Name] = false
	}

	for _, detector := range detectors {
		if detector == "all" {
			for _, rule := range e.patterns {
				e.enabled[rule.Name] = true
			}
			continue
		}

		found := false
		for _, rule := range e.patterns {
			if rule.Name == detector {
				e.enabled[rule.Name] = true
				found = true
				break
			}
		}

		if !found {
			return fmt.Errorf("unknown detector: %s", detector)
		}
	}

	return nil
}

// mask returns a run of the mask glyph with the same rune length as s, so
// downstream column widths and diffs line up with the original.
func (e *Engine) mask(s string) string {
	return strings.Repeat(string(e.glyph), utf8.RuneCountInString(s))
}

// RedactLabels masks the value portion of every "label: value" occurrence.
// Labels are applied strictly sequentially over the whole text, so each rule
// sees the output of all earlier replacements.
func (e *Engine) RedactLabels(text string) string {
	return e.applyLabels(text, nil)
}

// RedactPatterns masks every non-overlapping structural match. Applied after
// the label pass so free-standing PII without a recognized label is caught.
func (e *Engine) RedactPatterns(text string) string {
	return e.applyPatterns(text, nil)
}

// Redact is the pipeline entry point: labels first, then patterns. It is total
// over all string inputs and idempotent end to end.
func (e *Engine) Redact(text string) string {
	if !e.config.Enabled {
		return text
	}
	return e.applyPatterns(e.applyLabels(text, nil), nil)
}

// Process runs the full pipeline and reports per-rule match counts alongside
// the redacted text. Matched values are counted, never kept.
func (e *Engine) Process(text string) Result {
	if !e.config.Enabled {
		return Result{
			Redacted: text,
			Findings: []Finding{},
			Original: text,
		}
	}

	findings := make([]Finding, 0)
	record := func(entity string, count int) {
		findings = append(findings, Finding{EntityType: entity, Count: count})
	}

	redacted := e.applyPatterns(e.applyLabels(text, record), record)

	return Result{
		Redacted: redacted,
		Findings: findings,
		Original: text,
	}
}

func (e *Engine) applyLabels(text string, record func(entity string, count int)) string {
	if !e.config.Labels {
		return text
	}

	for _, rule := range e.labels {
		count := 0
		text = rule.Pattern.ReplaceAllStringFunc(text, func(m string) string {
			sub := rule.Pattern.FindStringSubmatch(m)
			if sub == nil {
				return m
			}
			count++
			return sub[1] + e.mask(sub[2])
		})
		if count > 0 && record != nil {
			record(rule.Label, count)
		}
	}

	return text
}

func (e *Engine) applyPatterns(text string, record func(entity string, count int)) string {
	for _, rule := range e.patterns {
		if !e.enabled[rule.Name] {
			continue
		}

		count := 0
		text = rule.Pattern.ReplaceAllStringFunc(text, func(m string) string {
			count++
			return e.mask(m)
		})
		if count > 0 && record != nil {
			record(rule.Name, count)
		}
	}

	return text
}

// countEnabledPatterns returns the number of enabled structural detectors
func (e *Engine) countEnabledPatterns() int {
	count := 0
	for _, enabled := range e.enabled {
		if enabled {
			count++
		}
	}
	return count
}

// EnabledPatterns returns the names of enabled structural detectors.
func (e *Engine) EnabledPatterns() []string {
	var names []string
	for _, rule := range e.patterns {
		if e.enabled[rule.Name] {
			names = append(names, rule.Name)
		}
	}
	return names
}

// LabelRuleCount returns the number of compiled label rules.
func (e *Engine) LabelRuleCount() int {
	return len(e.labels)
}
