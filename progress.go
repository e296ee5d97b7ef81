package unfold

import "time"

// CompletionMessage is the message of the terminal event of every run.
const CompletionMessage = "behavior run complete"

// ProgressEvent marks a completed action of a behavior run.
type ProgressEvent struct {
	// Step is the name of the step that produced the event.
	// It is empty for the terminal event.
	Step    string    `json:"step"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`

	// Done is set only on the terminal event, which is always last.
	Done bool `json:"done"`
}

// String formats the event for logs and terminal output.
func (e ProgressEvent) String() string {
	if e.Step == "" {
		return e.Message
	}
	return e.Step + ": " + e.Message
}
