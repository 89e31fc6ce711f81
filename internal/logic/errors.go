package logic

import (
	"errors"

	"github.com/ewhitmore/geotune/internal/session"
)

// Sentinel errors crossing the strategy and dispatch boundaries.
var (
	// ErrNoCandidates signals that a non-empty candidate list was required
	// and none was supplied. Informational to the caller, never a crash.
	ErrNoCandidates = errors.New("no candidate tracks")

	// ErrNoSeedTrack means the similarity strategy could not obtain a seed
	// from the listener's top tracks.
	ErrNoSeedTrack = errors.New("no seed track available")
)

// FailureKind classifies a failure per the service's error taxonomy so
// callers decide between fallback, degrade and surface instead of relying on
// empty-slice sentinels.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureConfiguration FailureKind = "configuration"
	FailureBroker        FailureKind = "broker_exchange"
	FailureCatalog       FailureKind = "catalog_call"
	FailureNoCandidates  FailureKind = "no_candidates"
	FailureDispatch      FailureKind = "playback_dispatch"
)

// Classify maps an error to its failure kind. Unrecognized errors count as
// catalog-call failures, the broadest degradable class.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrNoCandidates):
		return FailureNoCandidates
	case errors.Is(err, session.ErrClientUnavailable), errors.Is(err, session.ErrNoConnection):
		return FailureBroker
	default:
		return FailureCatalog
	}
}
