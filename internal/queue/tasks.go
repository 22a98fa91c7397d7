package queue

import (
	"encoding/json"

	"github.com/dropforge/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReceiptEmail is the post-completion receipt email task.
	TaskReceiptEmail = constants.TaskReceiptEmail
)

// ReceiptEmailPayload carries the completed order to mail about.
type ReceiptEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// NewReceiptEmailTask builds the receipt email task.
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptEmail, body), nil
}
