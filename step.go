package unfold

import (
	"time"
)

// StepKind selects how a step drives its controls.
type StepKind string

// Step kinds.
const (
	// KindOneShot clicks every clickable match of the first matching
	// selector once.
	KindOneShot StepKind = "one-shot"

	// KindRepeatUntilGone clicks the same control again and again until it
	// is no longer clickable (e.g., "load more").
	KindRepeatUntilGone StepKind = "repeat-until-gone"

	// KindRepeatEachUntilStable clicks every not-yet-clicked match on each
	// pass until no new controls appear (e.g., pagination, chart menus).
	KindRepeatEachUntilStable StepKind = "repeat-each-until-stable"
)

// Valid reports whether k is a known step kind.
func (k StepKind) Valid() bool {
	switch k {
	case KindOneShot, KindRepeatUntilGone, KindRepeatEachUntilStable:
		return true
	}
	return false
}

// Step is one named interaction of a behavior.
type Step struct {
	Name string `json:"name"`

	// Selectors are candidate CSS selectors for the same logical control,
	// tried in order. Page templates render some controls with different
	// class names depending on their version.
	Selectors []string `json:"selectors"`

	Kind StepKind `json:"kind"`

	// WaitTimeout bounds how long the step waits for a control to appear.
	WaitTimeout time.Duration `json:"waitTimeout"`

	// ClickDelay is the pause after each click.
	ClickDelay time.Duration `json:"clickDelay"`

	// SettleDelay is the pause after each traversal pass, giving the page
	// time to load new content.
	SettleDelay time.Duration `json:"settleDelay"`

	// MaxIterations caps the number of passes (or clicks for
	// KindRepeatUntilGone).
	MaxIterations int `json:"maxIterations"`
}

// Validate returns an error if the step could fail to terminate or is
// otherwise malformed.
func (s *Step) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "step name required")
	}
	if len(s.Selectors) == 0 {
		return Errorf(EINVALID, "step %q: at least one selector required", s.Name)
	}
	for _, sel := range s.Selectors {
		if sel == "" {
			return Errorf(EINVALID, "step %q: empty selector", s.Name)
		}
	}
	if !s.Kind.Valid() {
		return Errorf(EINVALID, "step %q: unknown kind %q", s.Name, s.Kind)
	}
	if s.WaitTimeout <= 0 {
		return Errorf(EINVALID, "step %q: wait timeout must be positive", s.Name)
	}
	if s.MaxIterations <= 0 {
		return Errorf(EINVALID, "step %q: max iterations must be positive", s.Name)
	}
	if s.ClickDelay < 0 || s.SettleDelay < 0 {
		return Errorf(EINVALID, "step %q: delays must not be negative", s.Name)
	}
	return nil
}

// Behavior is an ordered set of steps applied to pages of matching hosts.
type Behavior struct {
	Name string `json:"name"`

	// Hosts are glob patterns matched against the page host.
	// An empty list matches every host.
	Hosts []string `json:"hosts"`

	Steps []Step `json:"steps"`
}

// Validate returns an error if the behavior or any of its steps is invalid.
func (b *Behavior) Validate() error {
	if b.Name == "" {
		return Errorf(EINVALID, "behavior name required")
	}
	if len(b.Steps) == 0 {
		return Errorf(EINVALID, "behavior %q: at least one step required", b.Name)
	}
	seen := make(map[string]bool, len(b.Steps))
	for i := range b.Steps {
		if err := b.Steps[i].Validate(); err != nil {
			return err
		}
		if seen[b.Steps[i].Name] {
			return Errorf(EINVALID, "behavior %q: duplicate step %q", b.Name, b.Steps[i].Name)
		}
		seen[b.Steps[i].Name] = true
	}
	return nil
}
