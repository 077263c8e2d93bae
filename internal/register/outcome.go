// internal/register/outcome.go
//
// Terminal states of a registration attempt.
//
// Every Submit that runs ends in exactly one Outcome: Completed, or Rejected
// with a Reason.  Label gives the lowercase name used for metrics and the
// audit trail.
package register

import "github.com/baraliresort/reserve/internal/form"

// State is the terminal state of one submission attempt.
type State int

const (
	StateNone State = iota
	StateCompleted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateRejected:
		return "rejected"
	default:
		return "none"
	}
}

// Reason qualifies StateRejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonValidation
	ReasonDuplicate
	ReasonRemote
	ReasonTransport
)

func (r Reason) String() string {
	switch r {
	case ReasonValidation:
		return "validation"
	case ReasonDuplicate:
		return "duplicate"
	case ReasonRemote:
		return "remote"
	case ReasonTransport:
		return "transport"
	default:
		return ""
	}
}

// Outcome describes how an attempt ended.
type Outcome struct {
	State  State
	Reason Reason

	// Errors is set for validation and duplicate rejections.
	Errors form.FieldErrors
	// Message is the user-visible text for remote and transport rejections.
	Message string
	// NavigatedTo is the path handed to the Navigator on completion.
	NavigatedTo string
	// Err is the underlying transport failure, for logs.
	Err error
}

// Label is the metrics/audit label: "completed" or the rejection reason.
func (o Outcome) Label() string {
	if o.State == StateCompleted {
		return "completed"
	}
	return o.Reason.String()
}

// Completed reports whether the account was created.
func (o Outcome) Completed() bool { return o.State == StateCompleted }
