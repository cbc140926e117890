package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
)

type fakeClient struct {
	tasks []*asynq.Task
	err   error
}

func (c *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Queue: QueueEvents}, nil
}

func (c *fakeClient) Close() error { return nil }

type fakeDeliverer struct {
	got []ports.IssueEvent
	err error
}

func (d *fakeDeliverer) Deliver(_ context.Context, event ports.IssueEvent) error {
	d.got = append(d.got, event)
	return d.err
}

func sampleEvent() ports.IssueEvent {
	return ports.IssueEvent{
		Type:           ports.EventIssueUpdated,
		OrganizationID: "org-1",
		TeamID:         "team-1",
		IssueID:        "issue-7",
		ActorID:        "alice",
		OccurredAt:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublisherEnqueuesIssueEvent(t *testing.T) {
	client := &fakeClient{}
	p := &Publisher{client: client, log: zerolog.Nop()}

	require.NoError(t, p.PublishIssueEvent(context.Background(), sampleEvent()))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, TypeIssueEvent, client.tasks[0].Type())

	var got ports.IssueEvent
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &got))
	assert.Equal(t, sampleEvent(), got)
}

func TestPublisherReturnsEnqueueError(t *testing.T) {
	p := &Publisher{client: &fakeClient{err: errors.New("redis down")}, log: zerolog.Nop()}
	assert.EqualError(t, p.PublishIssueEvent(context.Background(), sampleEvent()), "redis down")
}

func TestWorkerDeliversIssueEvent(t *testing.T) {
	d := &fakeDeliverer{}
	w := &Worker{deliverer: d, log: zerolog.Nop()}

	task, err := NewIssueEventTask(sampleEvent())
	require.NoError(t, err)
	require.NoError(t, w.handleIssueEvent(context.Background(), task))
	assert.Equal(t, []ports.IssueEvent{sampleEvent()}, d.got)
}

func TestWorkerRetriesFailedDelivery(t *testing.T) {
	cause := errors.New("502")
	w := &Worker{deliverer: &fakeDeliverer{err: cause}, log: zerolog.Nop()}

	task, err := NewIssueEventTask(sampleEvent())
	require.NoError(t, err)
	err = w.handleIssueEvent(context.Background(), task)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestWorkerSkipsRetryOnBadPayload(t *testing.T) {
	d := &fakeDeliverer{}
	w := &Worker{deliverer: d, log: zerolog.Nop()}

	err := w.handleIssueEvent(context.Background(), asynq.NewTask(TypeIssueEvent, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, d.got)
}
