package main

// WorkerMessage is the payload sent from API -> SQS -> Worker. It mirrors
// the published status event.
type WorkerMessage struct {
	OrderID    string `json:"order_id"`
	Number     string `json:"number,omitempty"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Message    string `json:"message,omitempty"`
}
