package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Service exposes the issue-tracking operations. Every method runs the authorization cascade first.
// The store is safe for concurrent use, so one Service can serve all requests.
type Service struct {
	store          ports.Store
	log            zerolog.Logger
	now            func() time.Time
	newID          func() string
	defaultPerPage int
	events         ports.EventPublisher
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString for new issue and label ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithDefaultPerPage sets the page size used when a listing asks for none.
func WithDefaultPerPage(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultPerPage = n
		}
	}
}

// WithEventPublisher sends issue.created, issue.updated and issue.deleted events after each commit.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// NewService builds the service over store.
func NewService(store ports.Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:          store,
		log:            log,
		now:            time.Now,
		newID:          newUUID,
		defaultPerPage: DefaultPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// publish is best effort: the mutation already committed.
func (s *Service) publish(ctx context.Context, eventType, actorID, orgID, teamID, issueID string) {
	if s.events == nil {
		return
	}
	event := ports.IssueEvent{
		Type:           eventType,
		OrganizationID: orgID,
		TeamID:         teamID,
		IssueID:        issueID,
		ActorID:        actorID,
		OccurredAt:     s.timestamp(),
	}
	if err := s.events.PublishIssueEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Str("issue_id", issueID).Msg("publish issue event failed")
	}
}

// storageErr turns a storage failure into an Internal error; taxonomy errors pass through.
func storageErr(err error, op string) error {
	return domerrors.Wrap(err, "failed to "+op)
}
