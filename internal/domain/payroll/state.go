package payroll

import "slices"

// Status enum
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
)

// LockedStatuses are the states a run may no longer overwrite.
func LockedStatuses() []Status {
	return []Status{StatusApproved, StatusPaid}
}

// IsLocked reports whether the record is approved or paid. Locked records are
// kept by runs and are the only ones payslips and registers are produced from.
func (s Status) IsLocked() bool {
	return slices.Contains(LockedStatuses(), s)
}

// Transition is a bulk state change applied to a whole (company, month, year) period.
type Transition string

const (
	TransitionApprove  Transition = "approve"
	TransitionUnlock   Transition = "unlock"
	TransitionDisburse Transition = "disburse"
)

type transitionRule struct {
	from []Status
	to   Status
}

var transitionRules = map[Transition]transitionRule{
	TransitionApprove:  {from: []Status{StatusDraft, StatusApproved, StatusPaid}, to: StatusApproved},
	TransitionUnlock:   {from: []Status{StatusApproved}, to: StatusDraft},
	TransitionDisburse: {from: []Status{StatusApproved}, to: StatusPaid},
}

func (t Transition) IsValid() bool {
	_, ok := transitionRules[t]
	return ok
}

// SourceStates lists the states a record must be in to be changed by t.
func (t Transition) SourceStates() []Status {
	return slices.Clone(transitionRules[t].from)
}

// Target is the state records end up in after t.
func (t Transition) Target() Status {
	return transitionRules[t].to
}

// Allows reports whether a record in state from is changed by t.
func (t Transition) Allows(from Status) bool {
	return slices.Contains(transitionRules[t].from, from)
}
