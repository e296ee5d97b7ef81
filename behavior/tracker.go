package behavior

// Tracker remembers the target keys already actioned during one step.
// Controls are re-queried after every click, so handles cannot be compared;
// the derived key from unfold.TargetKey is used instead.
type Tracker struct {
	keys map[string]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{keys: make(map[string]struct{})}
}

// Seen reports whether key has been marked.
func (t *Tracker) Seen(key string) bool {
	_, ok := t.keys[key]
	return ok
}

// Mark records key as actioned.
func (t *Tracker) Mark(key string) {
	t.keys[key] = struct{}{}
}

// Len returns the number of marked keys.
func (t *Tracker) Len() int {
	return len(t.keys)
}
