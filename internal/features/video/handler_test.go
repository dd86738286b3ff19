package video

import (
	"io"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterskills/barterskills-server-go/pkg/types"
)

type fakeWatchStore struct {
	credits       int
	debitCalls    int
	historyCalls  int
	viewIncrCalls int
}

func (s *fakeWatchStore) DebitCredit(userID uuid.UUID) (bool, error) {
	s.debitCalls++
	if s.credits < 1 {
		return false, nil
	}
	s.credits--
	return true, nil
}

func (s *fakeWatchStore) AppendWatchHistory(userID, videoID uuid.UUID) error {
	s.historyCalls++
	return nil
}

func (s *fakeWatchStore) IncrementViews(videoID uuid.UUID) error {
	s.viewIncrCalls++
	return nil
}

func (s *fakeWatchStore) Credits(userID uuid.UUID) (int, error) {
	return s.credits, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPerformWatchDeniedNoCredits(t *testing.T) {
	store := &fakeWatchStore{credits: 0}
	vid := Video{BaseModel: types.BaseModel{ID: uuid.New()}, VideoURL: "https://cdn/video.mp4"}

	resp, err := performWatch(store, discardLogger(), ViewerState{Authenticated: true, Credits: 0}, uuid.New(), vid)

	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Nil(t, resp)
	assert.Zero(t, store.debitCalls)
	assert.Zero(t, store.viewIncrCalls)
	assert.Zero(t, store.historyCalls)
}

func TestPerformWatchDeniedPremiumRequired(t *testing.T) {
	store := &fakeWatchStore{credits: 10}
	vid := Video{BaseModel: types.BaseModel{ID: uuid.New()}, VideoURL: "https://cdn/video.mp4", IsPremium: true}

	resp, err := performWatch(store, discardLogger(), ViewerState{Authenticated: true, Credits: 10}, uuid.New(), vid)

	assert.ErrorIs(t, err, ErrPremiumRequired)
	assert.Nil(t, resp)
	assert.Zero(t, store.debitCalls)
	assert.Zero(t, store.viewIncrCalls)
	assert.Equal(t, 10, store.credits)
}

func TestPerformWatchFreeVideoDebits(t *testing.T) {
	store := &fakeWatchStore{credits: 3}
	vid := Video{BaseModel: types.BaseModel{ID: uuid.New()}, VideoURL: "https://cdn/video.mp4"}

	resp, err := performWatch(store, discardLogger(), ViewerState{Authenticated: true, Credits: 3}, uuid.New(), vid)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "https://cdn/video.mp4", resp.VideoURL)
	require.NotNil(t, resp.RemainingCredits)
	assert.Equal(t, 2, *resp.RemainingCredits)
	assert.Equal(t, 1, store.debitCalls)
	assert.Equal(t, 1, store.viewIncrCalls)
	assert.Equal(t, 1, store.historyCalls)
}

func TestPerformWatchPremiumWindowSkipsDebit(t *testing.T) {
	store := &fakeWatchStore{credits: 5}
	vid := Video{BaseModel: types.BaseModel{ID: uuid.New()}, VideoURL: "https://cdn/video.mp4", IsPremium: true}

	resp, err := performWatch(store, discardLogger(), ViewerState{Authenticated: true, Credits: 5, PremiumActive: true}, uuid.New(), vid)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Zero(t, store.debitCalls)
	assert.Equal(t, 5, store.credits)
	assert.Equal(t, 1, store.viewIncrCalls)
}

func TestPerformWatchLosingRaceRefuses(t *testing.T) {
	// The balance looked positive at evaluation time but a concurrent watch
	// drained it; the conditional debit is the authority.
	store := &fakeWatchStore{credits: 0}
	vid := Video{BaseModel: types.BaseModel{ID: uuid.New()}, VideoURL: "https://cdn/video.mp4"}

	resp, err := performWatch(store, discardLogger(), ViewerState{Authenticated: true, Credits: 1}, uuid.New(), vid)

	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Nil(t, resp)
	assert.Equal(t, 1, store.debitCalls)
	assert.Zero(t, store.viewIncrCalls)
}
