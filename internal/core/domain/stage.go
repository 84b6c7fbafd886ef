package domain

// Stage is the position of an upload job in its state machine
type Stage string

const (
	StageIdle          Stage = "idle"
	StagePreparing     Stage = "preparing"
	StageUploading     Stage = "uploading"
	StageVerifying     Stage = "verifying"
	StageResolving     Stage = "resolving"
	StageCommitting    Stage = "committing"
	StageCompleted     Stage = "completed"
	StageFailed        Stage = "failed"
	StagePendingCommit Stage = "pending_commit"
	StageCancelled     Stage = "cancelled"
)

// Action is an operation a caller may invoke on a job
type Action string

const (
	ActionCancel      Action = "cancel"
	ActionRetry       Action = "retry"
	ActionRetryCommit Action = "retry_commit"
)

// IsTerminal reports whether no action can move the job anymore
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageCancelled
}

// IsFailed reports whether the job is failed, pending commit included
func (s Stage) IsFailed() bool {
	return s == StageFailed || s == StagePendingCommit
}

// IsRunning reports whether a job run is in flight
func (s Stage) IsRunning() bool {
	switch s {
	case StageIdle, StagePreparing, StageUploading, StageVerifying, StageResolving, StageCommitting:
		return true
	}
	return false
}

// Actions lists the actions valid from this stage.
func (s Stage) Actions() []Action {
	switch {
	case s == StageFailed:
		return []Action{ActionRetry, ActionCancel}
	case s == StagePendingCommit:
		return []Action{ActionRetryCommit, ActionCancel}
	case s.IsRunning():
		return []Action{ActionCancel}
	default:
		return []Action{}
	}
}
