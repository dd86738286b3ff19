package video

// Entitlement policy constants. Premium classification at publish time is
// fixed at the free ceiling regardless of the uploader's tier.
const (
	FreeDurationCeiling    = 90.0  // seconds, free-tier uploaders
	PremiumDurationCeiling = 180.0 // seconds, premium uploaders
	PremiumThreshold       = 90.0  // seconds, above this a video is premium
	UploadRewardCredits    = 5
)

// ViewerState is the slice of a viewer's account that entitlement decisions
// depend on. A zero value describes an anonymous request.
type ViewerState struct {
	Authenticated bool
	Credits       int
	PremiumActive bool
	HasViewRecord bool
}

// FetchDecision describes what a metadata fetch should do for a viewer.
// Metadata itself is always served; only the side effects vary.
type FetchDecision struct {
	Debit            bool
	CreateViewRecord bool
	ShowCredits      bool
}

// EvaluateFetch decides the side effects of fetching a single video. The
// first fetch of a free-tier video by a signed-in viewer with a positive
// balance spends one credit and records the view; every later fetch of the
// same video is free. Premium videos never cost credits to fetch.
func EvaluateFetch(viewer ViewerState, premiumVideo bool) FetchDecision {
	decision := FetchDecision{
		ShowCredits: viewer.Authenticated,
	}

	if !viewer.Authenticated || premiumVideo || viewer.HasViewRecord {
		return decision
	}

	if viewer.Credits > 0 {
		decision.Debit = true
		decision.CreateViewRecord = true
	}

	return decision
}

// WatchDenial names why a watch request was refused.
type WatchDenial string

const (
	DenialNone            WatchDenial = ""
	DenialPremiumRequired WatchDenial = "premium_required"
	DenialNoCredits       WatchDenial = "insufficient_credits"
)

// WatchDecision describes whether playback is granted and at what cost.
type WatchDecision struct {
	Allow  bool
	Debit  bool
	Denial WatchDenial
}

// EvaluateWatch decides a playback request. Premium videos require an active
// premium window and never cost credits. Free-tier videos cost one credit on
// every watch, with no dedup; a zero balance refuses playback outright.
func EvaluateWatch(viewer ViewerState, premiumVideo bool) WatchDecision {
	if premiumVideo {
		if !viewer.PremiumActive {
			return WatchDecision{Denial: DenialPremiumRequired}
		}
		return WatchDecision{Allow: true}
	}

	if viewer.Credits < 1 {
		return WatchDecision{Denial: DenialNoCredits}
	}

	return WatchDecision{Allow: true, Debit: true}
}

// ClassifyUpload validates an upload's duration against the uploader's
// ceiling and returns the video's premium classification. The tier of the
// resulting video depends only on duration, not on who uploaded it.
func ClassifyUpload(duration float64, uploaderPremium bool) (bool, error) {
	ceiling := FreeDurationCeiling
	if uploaderPremium {
		ceiling = PremiumDurationCeiling
	}

	if duration > ceiling {
		return false, ErrDurationExceeded
	}

	return duration > PremiumThreshold, nil
}
