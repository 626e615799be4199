package domain

import "fmt"

// Aspect selects which slice of the rule set a run evaluates.
type Aspect string

const (
	AspectArchitecture Aspect = "architecture"
	AspectCoverage     Aspect = "coverage"
	AspectStyle        Aspect = "style"
	AspectAll          Aspect = "all"
)

// ValidAspects enumerates all recognized aspects.
var ValidAspects = []Aspect{
	AspectArchitecture,
	AspectCoverage,
	AspectStyle,
	AspectAll,
}

// FailOn is the severity threshold that turns a report into a failure.
type FailOn string

const (
	FailOnError   FailOn = "error"
	FailOnWarning FailOn = "warning"
	FailOnNone    FailOn = "none"
)

// ValidFailOn enumerates all recognized failure thresholds.
var ValidFailOn = []FailOn{FailOnError, FailOnWarning, FailOnNone}

// validLayers enumerates the layers a config rule may map to.
var validLayers = []Layer{
	LayerDomain, LayerApplication, LayerInfrastructure, LayerApi, LayerUnknown,
}

// ProjectConfig holds project-level configuration loaded from .archlint.yaml.
type ProjectConfig struct {
	Layers        []LayerRule `yaml:"layers"         json:"layers,omitempty"`
	ExcludePaths  []string    `yaml:"exclude_paths"  json:"exclude_paths,omitempty"`
	FailOn        FailOn      `yaml:"fail_on"        json:"fail_on,omitempty"`
	DisabledRules []string    `yaml:"disabled_rules" json:"disabled_rules,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// EffectiveLayerRules returns the configured layer rules with the default
// convention appended, so paths the config does not cover still map
// conventionally. Rules are matched in order, first match wins.
func (c ProjectConfig) EffectiveLayerRules() []LayerRule {
	if len(c.Layers) == 0 {
		return DefaultLayerRules()
	}
	out := make([]LayerRule, 0, len(c.Layers)+4)
	out = append(out, c.Layers...)
	out = append(out, DefaultLayerRules()...)
	return out
}

// EffectiveFailOn returns the configured threshold, defaulting to error.
func (c ProjectConfig) EffectiveFailOn() FailOn {
	if c.FailOn == "" {
		return FailOnError
	}
	return c.FailOn
}

// IsRuleDisabled reports whether the named rule is excluded from the run.
func (c ProjectConfig) IsRuleDisabled(id string) bool {
	for _, r := range c.DisabledRules {
		if r == id {
			return true
		}
	}
	return false
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. layer rules need a pattern and a known layer
	for i, r := range c.Layers {
		if r.Pattern == "" {
			return fmt.Errorf("layers[%d].pattern must not be empty", i)
		}
		if !isValidLayer(r.Layer) {
			return fmt.Errorf("unknown layer %q in layers[%d] (valid: domain, application, infrastructure, api, unknown)", r.Layer, i)
		}
	}

	// 2. fail_on must be known or empty
	if c.FailOn != "" {
		valid := false
		for _, f := range ValidFailOn {
			if c.FailOn == f {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown fail_on %q (valid: error, warning, none)", c.FailOn)
		}
	}

	// 3. exclude paths must not be empty strings
	for i, p := range c.ExcludePaths {
		if p == "" {
			return fmt.Errorf("exclude_paths[%d] must not be empty", i)
		}
	}

	// 4. disabled rule ids must not be empty; existence is checked against
	// the registry before a run
	for i, id := range c.DisabledRules {
		if id == "" {
			return fmt.Errorf("disabled_rules[%d] must not be empty", i)
		}
	}

	return nil
}

// ParseAspect validates a CLI-supplied aspect value.
func ParseAspect(s string) (Aspect, error) {
	a := Aspect(s)
	for _, v := range ValidAspects {
		if a == v {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown aspect %q (valid: architecture, coverage, style, all)", s)
}

// ParseFailOn validates a CLI-supplied fail-on value.
func ParseFailOn(s string) (FailOn, error) {
	f := FailOn(s)
	for _, v := range ValidFailOn {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown fail-on %q (valid: error, warning, none)", s)
}

func isValidLayer(l Layer) bool {
	for _, v := range validLayers {
		if l == v {
			return true
		}
	}
	return false
}
