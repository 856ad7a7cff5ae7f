package service

import (
	"context"
	"time"
)

// TriggerEvent asks a worker to run a scheduled task
type TriggerEvent struct {
	RequestID    string    `json:"request_id,omitempty"` // For distributed tracing
	Task         string    `json:"task"`
	ScheduleTime time.Time `json:"schedule_time"`

	// ReferenceTime replaces the worker clock when set (manual backfills)
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishTriggerEvent publishes a trigger event for a worker to pick up
	PublishTriggerEvent(ctx context.Context, event *TriggerEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
