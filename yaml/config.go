// Package yaml reads and writes behavior configuration files.
//
// A file lists behaviors in the order they are matched against page hosts:
//
//	behaviors:
//	  - name: ons
//	    hosts: ["*.ons.gov.uk"]
//	    steps:
//	      - name: load-more
//	        kind: repeat-until-gone
//	        selectors: [".ons-load-more"]
//	        wait_timeout: 5s
//	        click_delay: 2s
//	        max_iterations: 100
//
// A step named like a built-in step inherits every field it leaves unset
// from the built-in, so overriding only the selectors is enough. An
// explicit zero, such as "click_delay: 0s", overrides the built-in value.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/behavior"
	"github.com/goccy/go-yaml"
)

type file struct {
	Behaviors []behaviorConfig `yaml:"behaviors"`
}

type behaviorConfig struct {
	Name  string       `yaml:"name"`
	Hosts []string     `yaml:"hosts,omitempty"`
	Steps []stepConfig `yaml:"steps"`
}

type stepConfig struct {
	Name          string        `yaml:"name"`
	Kind          string        `yaml:"kind,omitempty"`
	Selectors     []string      `yaml:"selectors,omitempty"`
	WaitTimeout   *time.Duration `yaml:"wait_timeout,omitempty"`
	ClickDelay    *time.Duration `yaml:"click_delay,omitempty"`
	SettleDelay   *time.Duration `yaml:"settle_delay,omitempty"`
	MaxIterations *int           `yaml:"max_iterations,omitempty"`
}

// LoadBehaviors decodes and validates behaviors from r.
// Unknown keys are rejected so that misspelled settings are not ignored.
func LoadBehaviors(r io.Reader) ([]unfold.Behavior, error) {
	var f file
	dec := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, unfold.Errorf(unfold.EINVALID, "no behaviors defined")
		}
		return nil, unfold.Errorf(unfold.EINVALID, "invalid behavior config: %s", yaml.FormatError(err, false, true))
	}
	if len(f.Behaviors) == 0 {
		return nil, unfold.Errorf(unfold.EINVALID, "no behaviors defined")
	}

	defaults := make(map[string]unfold.Step)
	for _, s := range behavior.DefaultSteps() {
		defaults[s.Name] = s
	}

	behaviors := make([]unfold.Behavior, 0, len(f.Behaviors))
	names := make(map[string]bool, len(f.Behaviors))
	for _, bc := range f.Behaviors {
		b := unfold.Behavior{Name: bc.Name, Hosts: bc.Hosts}
		for _, sc := range bc.Steps {
			b.Steps = append(b.Steps, sc.merge(defaults[sc.Name]))
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if names[b.Name] {
			return nil, unfold.Errorf(unfold.EINVALID, "duplicate behavior %q", b.Name)
		}
		names[b.Name] = true
		behaviors = append(behaviors, b)
	}
	return behaviors, nil
}

// LoadFile reads behaviors from the file at path.
func LoadFile(path string) ([]unfold.Behavior, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening behavior config: %w", err)
	}
	defer f.Close()

	return LoadBehaviors(f)
}

// MarshalBehaviors encodes behaviors in the format read by LoadBehaviors.
func MarshalBehaviors(behaviors []unfold.Behavior) ([]byte, error) {
	f := file{Behaviors: make([]behaviorConfig, 0, len(behaviors))}
	for _, b := range behaviors {
		bc := behaviorConfig{Name: b.Name, Hosts: b.Hosts}
		for _, s := range b.Steps {
			bc.Steps = append(bc.Steps, stepConfig{
				Name:          s.Name,
				Kind:          string(s.Kind),
				Selectors:     s.Selectors,
				WaitTimeout:   &s.WaitTimeout,
				ClickDelay:    &s.ClickDelay,
				SettleDelay:   &s.SettleDelay,
				MaxIterations: &s.MaxIterations,
			})
		}
		f.Behaviors = append(f.Behaviors, bc)
	}

	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf, yaml.IndentSequence(true)).Encode(f); err != nil {
		return nil, fmt.Errorf("encoding behavior config: %w", err)
	}
	return buf.Bytes(), nil
}

// merge returns the step described by c, with unset fields taken from base.
func (c stepConfig) merge(base unfold.Step) unfold.Step {
	s := base
	s.Name = c.Name
	if c.Kind != "" {
		s.Kind = unfold.StepKind(c.Kind)
	}
	if len(c.Selectors) > 0 {
		s.Selectors = c.Selectors
	}
	if c.WaitTimeout != nil {
		s.WaitTimeout = *c.WaitTimeout
	}
	if c.ClickDelay != nil {
		s.ClickDelay = *c.ClickDelay
	}
	if c.SettleDelay != nil {
		s.SettleDelay = *c.SettleDelay
	}
	if c.MaxIterations != nil {
		s.MaxIterations = *c.MaxIterations
	}
	return s
}
