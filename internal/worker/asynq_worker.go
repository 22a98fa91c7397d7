package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/logger"
	"github.com/dropforge/internal/provider"
	"github.com/dropforge/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register wires the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReceiptEmail, c.handleReceiptEmail)
}

// handleReceiptEmail mails the receipt for a completed order. Transient send
// failures return an error so asynq retries; anything unmailable is skipped.
func (c *Consumer) handleReceiptEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_receipt_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReceiptEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_receipt_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_receipt_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_receipt_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_receipt_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if order.Status != constants.OrderStatusCompleted {
		logger.Debugw("worker_receipt_email_skip_not_completed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"status", order.Status,
		)
		return nil
	}
	receiver := strings.TrimSpace(order.Email)
	if receiver == "" {
		logger.Debugw("worker_receipt_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_receipt_email_skip_email_service_nil", "order_id", order.ID)
		return nil
	}
	if err := c.EmailService.SendReceiptEmail(receiver, order); err != nil {
		logger.Warnw("worker_receipt_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiver,
			"error", err,
		)
		return err
	}
	return nil
}
