package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
)

// Worker runs Asynq task handlers that deliver issue events.
type Worker struct {
	srv       *asynq.Server
	mux       *asynq.ServeMux
	deliverer ports.EventDeliverer
	log       zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisConnOpt, concurrency int, deliverer ports.EventDeliverer, log zerolog.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 2
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueEvents: 1},
		LogLevel:    asynq.WarnLevel,
	})
	w := &Worker{srv: srv, mux: asynq.NewServeMux(), deliverer: deliverer, log: log}
	w.mux.HandleFunc(TypeIssueEvent, w.handleIssueEvent)
	return w
}

func (w *Worker) handleIssueEvent(ctx context.Context, t *asynq.Task) error {
	var event ports.IssueEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		w.log.Error().Err(err).Msg("issue event payload invalid")
		return fmt.Errorf("decode issue event: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.deliverer.Deliver(ctx, event); err != nil {
		w.log.Warn().
			Err(err).
			Str("event", event.Type).
			Str("issue_id", event.IssueID).
			Msg("issue event delivery failed; will retry")
		return err
	}
	w.log.Debug().Str("event", event.Type).Str("issue_id", event.IssueID).Msg("issue event delivered")
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
