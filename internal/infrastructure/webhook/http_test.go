package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
)

func testEvent() ports.IssueEvent {
	return ports.IssueEvent{
		Type:           ports.EventIssueCreated,
		OrganizationID: "org-1",
		TeamID:         "team-1",
		IssueID:        "issue-1",
		ActorID:        "alice",
		OccurredAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestDeliverPostsSignedJSON(t *testing.T) {
	var (
		gotBody    []byte
		gotHeaders http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := NewHTTPEmitter(srv.URL, WithSecret("s3cret"), WithHeader("Authorization", "Bearer hook"))
	require.NoError(t, e.Deliver(context.Background(), testEvent()))

	var got ports.IssueEvent
	require.NoError(t, json.Unmarshal(gotBody, &got))
	assert.Equal(t, testEvent(), got)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, ports.EventIssueCreated, gotHeaders.Get("X-Tracker-Event"))
	assert.Equal(t, "Bearer hook", gotHeaders.Get("Authorization"))
	assert.Equal(t, Sign([]byte("s3cret"), gotBody), gotHeaders.Get(SignatureHeader))
}

func TestDeliverWithoutSecretIsUnsigned(t *testing.T) {
	var signature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get(SignatureHeader)
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPEmitter(srv.URL).Deliver(context.Background(), testEvent()))
	assert.Empty(t, signature)
}

func TestDeliverNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPEmitter(srv.URL).Deliver(context.Background(), testEvent())
	assert.EqualError(t, err, "webhook endpoint returned status 502")
}
