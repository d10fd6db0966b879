package domain

type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusRunning   TaskStatus = "RUNNING"
	StatusCompleted TaskStatus = "COMPLETED"
	StatusFailed    TaskStatus = "FAILED"
)

// Task is the unit of work tracked by the system. ProcessID is assigned at
// creation and never changes; StartTime, FinishTime and Message are absent
// until something sets them.
type Task struct {
	ProcessID    string     `json:"process_id" db:"process_id"`
	Name         string     `json:"name" db:"name"`
	Status       TaskStatus `json:"status" db:"status"`
	RegisteredAt int64      `json:"registered_at" db:"registered_at"`
	StartTime    *int64     `json:"start_time,omitempty" db:"start_time"`
	FinishTime   *int64     `json:"finish_time,omitempty" db:"finish_time"`
	Message      *string    `json:"message,omitempty" db:"message"`
}

// StatusUpdate carries the fields of an inbound push that may change a task.
// A nil time means "not in this message" and must not clobber a stored value.
type StatusUpdate struct {
	Status     TaskStatus
	StartTime  *int64
	FinishTime *int64
}

// Apply merges an update into the task. Times are replaced only when the
// incoming value is present.
func (t Task) Apply(u StatusUpdate) Task {
	t.Status = u.Status
	if u.StartTime != nil {
		t.StartTime = u.StartTime
	}
	if u.FinishTime != nil {
		t.FinishTime = u.FinishTime
	}
	return t
}

// PushMessage is a data-only payload addressed to a specific device token.
// All values are strings, mirroring the wire format.
type PushMessage struct {
	Token string
	Data  map[string]string
}

// Rank orders statuses along the intended one-directional progression:
// PENDING before RUNNING before the terminal pair. COMPLETED and FAILED share
// a rank; neither supersedes the other.
func (s TaskStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusRunning:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	}
	return -1
}
