package order

// Status is the order lifecycle state.
type Status string

// Order statuses. Any status may move to any other; the aggregate enforces
// ordering of hooks and notes, not a transition table.
const (
	StatusCreated    Status = "CREATED"
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusOnHold     Status = "ON_HOLD"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

var statusNames = map[Status]string{
	StatusCreated:    "Created",
	StatusPending:    "Pending",
	StatusProcessing: "Processing",
	StatusOnHold:     "On Hold",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
	StatusRefunded:   "Refunded",
}

// Name returns the human-readable status name used in order notes.
func (s Status) Name() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return string(s)
}

// Known reports whether the status belongs to the declared enumeration.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}
