package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateFetch(t *testing.T) {
	tests := []struct {
		name         string
		viewer       ViewerState
		premiumVideo bool
		want         FetchDecision
	}{
		{
			name:   "anonymous viewer free video",
			viewer: ViewerState{},
			want:   FetchDecision{},
		},
		{
			name:         "anonymous viewer premium video",
			viewer:       ViewerState{},
			premiumVideo: true,
			want:         FetchDecision{},
		},
		{
			name:   "first fetch with credits debits and records",
			viewer: ViewerState{Authenticated: true, Credits: 3},
			want:   FetchDecision{Debit: true, CreateViewRecord: true, ShowCredits: true},
		},
		{
			name:   "repeat fetch never debits",
			viewer: ViewerState{Authenticated: true, Credits: 3, HasViewRecord: true},
			want:   FetchDecision{ShowCredits: true},
		},
		{
			name:   "zero balance fetch is free",
			viewer: ViewerState{Authenticated: true, Credits: 0},
			want:   FetchDecision{ShowCredits: true},
		},
		{
			name:         "premium video never costs on fetch",
			viewer:       ViewerState{Authenticated: true, Credits: 5},
			premiumVideo: true,
			want:         FetchDecision{ShowCredits: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateFetch(tt.viewer, tt.premiumVideo)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateWatch(t *testing.T) {
	tests := []struct {
		name         string
		viewer       ViewerState
		premiumVideo bool
		want         WatchDecision
	}{
		{
			name:         "premium video without premium window",
			viewer:       ViewerState{Authenticated: true, Credits: 10},
			premiumVideo: true,
			want:         WatchDecision{Denial: DenialPremiumRequired},
		},
		{
			name:         "premium video with active window is free",
			viewer:       ViewerState{Authenticated: true, PremiumActive: true},
			premiumVideo: true,
			want:         WatchDecision{Allow: true},
		},
		{
			name:   "free video with credits debits every time",
			viewer: ViewerState{Authenticated: true, Credits: 1},
			want:   WatchDecision{Allow: true, Debit: true},
		},
		{
			name:   "free video with zero balance is refused",
			viewer: ViewerState{Authenticated: true, Credits: 0},
			want:   WatchDecision{Denial: DenialNoCredits},
		},
		{
			name:   "premium account still pays for free videos",
			viewer: ViewerState{Authenticated: true, Credits: 2, PremiumActive: true},
			want:   WatchDecision{Allow: true, Debit: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateWatch(tt.viewer, tt.premiumVideo)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyUpload(t *testing.T) {
	t.Run("short video is free tier", func(t *testing.T) {
		premium, err := ClassifyUpload(45, false)
		require.NoError(t, err)
		assert.False(t, premium)
	})

	t.Run("exactly at threshold is free tier", func(t *testing.T) {
		premium, err := ClassifyUpload(90, false)
		require.NoError(t, err)
		assert.False(t, premium)
	})

	t.Run("free uploader over ceiling is rejected", func(t *testing.T) {
		_, err := ClassifyUpload(91, false)
		assert.ErrorIs(t, err, ErrDurationExceeded)
	})

	t.Run("premium uploader over threshold is premium video", func(t *testing.T) {
		premium, err := ClassifyUpload(120, true)
		require.NoError(t, err)
		assert.True(t, premium)
	})

	t.Run("premium uploader at extended ceiling", func(t *testing.T) {
		premium, err := ClassifyUpload(180, true)
		require.NoError(t, err)
		assert.True(t, premium)
	})

	t.Run("premium uploader over extended ceiling is rejected", func(t *testing.T) {
		_, err := ClassifyUpload(181, true)
		assert.ErrorIs(t, err, ErrDurationExceeded)
	})
}
