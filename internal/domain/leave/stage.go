package leave

import "fmt"

// Status is the value stored in status, supervisor_status and authorized_officer_status.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Decision is what an approver chooses.
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Stage is the approval position of a request. The three persisted status
// columns are a projection of it.
type Stage int

const (
	StagePendingBoth Stage = iota
	StageSupervisorApproved
	StageApproved
	StageRejectedBySupervisor
	StageRejectedByOfficer
)

var stageNames = map[Stage]string{
	StagePendingBoth:          "pending supervisor",
	StageSupervisorApproved:   "pending authorized officer",
	StageApproved:             "approved",
	StageRejectedBySupervisor: "rejected by supervisor",
	StageRejectedByOfficer:    "rejected by authorized officer",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Statuses returns the aggregate, supervisor and authorized officer statuses for s.
func (s Stage) Statuses() (status, supervisor, officer Status) {
	switch s {
	case StageSupervisorApproved:
		return StatusPending, StatusApproved, StatusPending
	case StageApproved:
		return StatusApproved, StatusApproved, StatusApproved
	case StageRejectedBySupervisor:
		return StatusRejected, StatusRejected, StatusPending
	case StageRejectedByOfficer:
		return StatusRejected, StatusApproved, StatusRejected
	default:
		return StatusPending, StatusPending, StatusPending
	}
}

func (s Stage) IsRejected() bool {
	return s == StageRejectedBySupervisor || s == StageRejectedByOfficer
}

func (s Stage) IsTerminal() bool {
	return s == StageApproved || s.IsRejected()
}

// StageOf maps stored statuses back to a stage. Combinations no stage produces are rejected.
func StageOf(status, supervisor, officer Status) (Stage, error) {
	for _, s := range []Stage{
		StagePendingBoth,
		StageSupervisorApproved,
		StageApproved,
		StageRejectedBySupervisor,
		StageRejectedByOfficer,
	} {
		a, b, c := s.Statuses()
		if a == status && b == supervisor && c == officer {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: status=%s supervisor=%s officer=%s", ErrCorruptStatus, status, supervisor, officer)
}

// ApplySupervisor is the supervisor transition. Only valid from StagePendingBoth.
func (s Stage) ApplySupervisor(d Decision) (Stage, error) {
	if s != StagePendingBoth {
		return s, &InvalidStateError{Stage: s, Action: "record supervisor decision"}
	}
	if d == DecisionApproved {
		return StageSupervisorApproved, nil
	}
	return StageRejectedBySupervisor, nil
}

// ApplyOfficer is the authorized officer transition. Only valid from StageSupervisorApproved.
func (s Stage) ApplyOfficer(d Decision) (Stage, error) {
	if s != StageSupervisorApproved {
		return s, &InvalidStateError{Stage: s, Action: "record authorized officer decision"}
	}
	if d == DecisionApproved {
		return StageApproved, nil
	}
	return StageRejectedByOfficer, nil
}
