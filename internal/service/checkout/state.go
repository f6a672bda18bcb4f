package checkout

import "time"

// State is a checkout workflow state.
type State int

const (
	Idle State = iota
	Confirming
	Processing
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	case Processing:
		return "processing"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Notification is a transient message for the user. When Redirect is set the
// front end navigates there after Delay.
type Notification struct {
	Message  string
	Redirect string
	Delay    time.Duration
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
