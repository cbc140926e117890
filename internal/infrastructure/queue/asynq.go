package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
)

const (
	TypeIssueEvent = "webhook:issue_event"
	QueueEvents    = "events"

	maxDeliveryRetries = 8
	deliveryTimeout    = 30 * time.Second
)

// enqueuer is the part of *asynq.Client the publisher needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Publisher enqueues issue events for the worker to deliver.
type Publisher struct {
	client enqueuer
	log    zerolog.Logger
}

func NewPublisher(redisOpt asynq.RedisConnOpt, log zerolog.Logger) *Publisher {
	return &Publisher{client: asynq.NewClient(redisOpt), log: log}
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// NewIssueEventTask builds the task carrying event.
func NewIssueEventTask(event ports.IssueEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeIssueEvent, payload,
		asynq.Queue(QueueEvents),
		asynq.MaxRetry(maxDeliveryRetries),
		asynq.Timeout(deliveryTimeout),
	), nil
}

func (p *Publisher) PublishIssueEvent(ctx context.Context, event ports.IssueEvent) error {
	task, err := NewIssueEventTask(event)
	if err != nil {
		return err
	}
	if _, err := p.client.EnqueueContext(ctx, task); err != nil {
		p.log.Warn().Err(err).Str("event", event.Type).Str("issue_id", event.IssueID).Msg("enqueue issue event failed")
		return err
	}
	return nil
}

var _ ports.EventPublisher = (*Publisher)(nil)
