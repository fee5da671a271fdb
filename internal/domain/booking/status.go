package booking

import "github.com/BruksfildServices01/clinic-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusNoShow     Status = "no-show"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
	StatusNoShow,
	StatusCancelled,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", httperr.ErrValidation("invalid_status", "Unknown booking status: "+s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsVacating reports whether a booking in this status frees its slot.
func (s Status) IsVacating() bool {
	switch s {
	case StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// IsOccupying is the slot-occupancy predicate used by the conflict check.
func (s Status) IsOccupying() bool {
	return s.Valid() && !s.IsVacating()
}

// OccupyingStatuses lists the statuses that hold a slot, for store queries.
func OccupyingStatuses() []string {
	var out []string
	for _, s := range allStatuses {
		if s.IsOccupying() {
			out = append(out, string(s))
		}
	}
	return out
}

func InitialStatus() Status {
	return StatusScheduled
}

// ===============================
// Transitions
// ===============================

type Transition string

const (
	TransitionStart  Transition = "start"
	TransitionFinish Transition = "finish"
	TransitionNoShow Transition = "no-show"
	TransitionCancel Transition = "cancel"
)

type rule struct {
	from []Status
	to   Status
}

var transitions = map[Transition]rule{
	TransitionStart:  {from: []Status{StatusScheduled}, to: StatusInProgress},
	TransitionFinish: {from: []Status{StatusScheduled, StatusInProgress}, to: StatusCompleted},
	TransitionNoShow: {from: []Status{StatusScheduled}, to: StatusNoShow},
	TransitionCancel: {from: []Status{StatusScheduled}, to: StatusCancelled},
}

// Next resolves a named transition from current.
func Next(current Status, t Transition) (Status, error) {
	r, ok := transitions[t]
	if !ok {
		return "", httperr.ErrValidation("invalid_transition", "Unknown transition: "+string(t))
	}
	for _, from := range r.from {
		if from == current {
			return r.to, nil
		}
	}
	return "", httperr.ErrBusiness("invalid_state")
}

// CanOverride reports whether an operator may set to directly from from.
// Any known status may be set to any other known status.
func CanOverride(from, to Status) bool {
	return from.Valid() && to.Valid()
}
