package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePremiumStore struct {
	users      map[string]ExpiredPremiumUser
	failFor    map[string]error
	queryLimit int
	cleared    []string
}

func (s *fakePremiumStore) ExpiredPremiumUsers(ctx context.Context, now time.Time, limit int) ([]ExpiredPremiumUser, error) {
	s.queryLimit = limit
	var expired []ExpiredPremiumUser
	for _, u := range s.users {
		if !u.ExpiredAt.After(now) {
			expired = append(expired, u)
		}
	}
	return expired, nil
}

func (s *fakePremiumStore) ClearPremium(ctx context.Context, userID string) (bool, error) {
	if err := s.failFor[userID]; err != nil {
		return false, err
	}
	if _, found := s.users[userID]; !found {
		return false, nil
	}
	delete(s.users, userID)
	s.cleared = append(s.cleared, userID)
	return true, nil
}

type fakeEmailClient struct {
	sent []string
	err  error
}

func (f *fakeEmailClient) SendNotification(to, subject, body string) error {
	f.sent = append(f.sent, to)
	return f.err
}

func expiredUser(id string, expiredAt time.Time) ExpiredPremiumUser {
	return ExpiredPremiumUser{ID: id, Email: id + "@example.com", FullName: "User " + id, ExpiredAt: expiredAt}
}

func newExpiryJob(store PremiumStore, email EmailClient) *PremiumExpiryJob {
	return &PremiumExpiryJob{
		store:       store,
		emailClient: email,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestPremiumExpirySweep(t *testing.T) {
	now := time.Now()
	store := &fakePremiumStore{users: map[string]ExpiredPremiumUser{
		"u1": expiredUser("u1", now.Add(-time.Hour)),
		"u2": expiredUser("u2", now.Add(-24*time.Hour)),
		"u3": expiredUser("u3", now.Add(time.Hour)),
	}}
	email := &fakeEmailClient{}

	require.NoError(t, newExpiryJob(store, email).Execute(context.Background()))

	// Expired windows are cleared; the still-active one is untouched.
	assert.ElementsMatch(t, []string{"u1", "u2"}, store.cleared)
	assert.Contains(t, store.users, "u3")
	assert.ElementsMatch(t, []string{"u1@example.com", "u2@example.com"}, email.sent)
	assert.Equal(t, sweepBatchLimit, store.queryLimit)
}

func TestPremiumExpirySweepIsolatesFailures(t *testing.T) {
	now := time.Now()
	store := &fakePremiumStore{
		users: map[string]ExpiredPremiumUser{
			"u1": expiredUser("u1", now.Add(-time.Hour)),
			"u2": expiredUser("u2", now.Add(-time.Hour)),
		},
		failFor: map[string]error{"u1": errors.New("row locked")},
	}
	email := &fakeEmailClient{}

	// One bad row must not abort the sweep or fail the run.
	require.NoError(t, newExpiryJob(store, email).Execute(context.Background()))

	assert.Equal(t, []string{"u2"}, store.cleared)
	assert.Equal(t, []string{"u2@example.com"}, email.sent)
}

func TestPremiumExpirySweepSkipsAlreadyDowngraded(t *testing.T) {
	now := time.Now()
	store := &fakePremiumStore{users: map[string]ExpiredPremiumUser{
		"u1": expiredUser("u1", now.Add(-time.Hour)),
	}}
	email := &fakeEmailClient{}
	job := newExpiryJob(store, email)

	require.NoError(t, job.Execute(context.Background()))
	require.NoError(t, job.Execute(context.Background()))

	// The second pass finds nothing to clear and sends nothing.
	assert.Equal(t, []string{"u1"}, store.cleared)
	assert.Equal(t, []string{"u1@example.com"}, email.sent)
}

func TestPremiumExpirySweepEmailFailureIsBestEffort(t *testing.T) {
	now := time.Now()
	store := &fakePremiumStore{users: map[string]ExpiredPremiumUser{
		"u1": expiredUser("u1", now.Add(-time.Hour)),
	}}
	email := &fakeEmailClient{err: errors.New("smtp down")}

	require.NoError(t, newExpiryJob(store, email).Execute(context.Background()))
	assert.Equal(t, []string{"u1"}, store.cleared)
}
