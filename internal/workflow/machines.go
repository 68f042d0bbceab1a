package workflow

import (
	"github.com/peoplekit/hrcore/internal/authz"
)

// MemoMachine: draft -> pending_approval (owner), then published or rejected
// by the owner's manager, any org manager, HR or admin. Both outcomes are
// terminal; a rejected memo is resubmitted by creating a new one.
func MemoMachine() *Machine {
	return NewMachine(authz.EntityMemo, StatusDraft, []Transition{
		{Action: ActionSubmit, From: StatusDraft, To: StatusPendingApproval, By: Requirement{OwnerOnly: true}},
		{Action: ActionPublish, From: StatusPendingApproval, To: StatusPublished, By: Requirement{
			ManagerOfOwner: true,
			Capabilities:   []authz.Capability{authz.CapAdminHROrManager},
		}},
		{Action: ActionReject, From: StatusPendingApproval, To: StatusRejected, By: Requirement{
			ManagerOfOwner: true,
			Capabilities:   []authz.Capability{authz.CapAdminHROrManager},
		}},
	})
}

// LeaveMachine: pending -> approved | rejected by admin, HR or the owner's
// direct manager. An org-wide manager role is not enough here.
func LeaveMachine() *Machine {
	return reviewMachine(authz.EntityLeaveRequest)
}

// AttendanceMachine mirrors the leave lifecycle for attendance corrections.
func AttendanceMachine() *Machine {
	return reviewMachine(authz.EntityAttendanceCorrection)
}

// ProfileChangeMachine: reviewer is the direct manager of the target
// profile, HR or admin.
func ProfileChangeMachine() *Machine {
	return reviewMachine(authz.EntityProfileChangeRequest)
}

func reviewMachine(entity string) *Machine {
	reviewer := Requirement{
		ManagerOfOwner: true,
		Capabilities:   []authz.Capability{authz.CapAdminOrHR},
	}
	return NewMachine(entity, StatusPending, []Transition{
		{Action: ActionApprove, From: StatusPending, To: StatusApproved, By: reviewer},
		{Action: ActionReject, From: StatusPending, To: StatusRejected, By: reviewer},
	})
}

// ExpenseMachine decouples approval authority from posting authority:
// managers and HR decide, but only finance or admin may move an approved
// expense to paid, which is the sole transition that posts to the ledger.
func ExpenseMachine() *Machine {
	reviewer := Requirement{
		ManagerOfOwner: true,
		Capabilities:   []authz.Capability{authz.CapAdminOrHR},
	}
	return NewMachine(authz.EntityExpense, StatusSubmitted, []Transition{
		{Action: ActionApprove, From: StatusSubmitted, To: StatusApproved, By: reviewer},
		{Action: ActionReject, From: StatusSubmitted, To: StatusRejected, By: reviewer},
		{Action: ActionPay, From: StatusApproved, To: StatusPaid, By: Requirement{
			Capabilities: []authz.Capability{authz.CapAdminOrFinance},
		}},
	})
}
