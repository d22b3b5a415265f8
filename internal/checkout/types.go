package checkout

import "time"

// Idempotency record statuses.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record tracks one idempotent checkout attempt, keyed by the client's
// Idempotency-Key header.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`          // IN_PROGRESS | DONE | FAILED
	OrderID        string    `dynamodbav:"order_id,omitempty"`
	OrderNumber    string    `dynamodbav:"order_number,omitempty"`
	Total          float64   `dynamodbav:"total,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty"`
	Note           string    `dynamodbav:"note,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at,omitempty"` // TTL attribute
}
