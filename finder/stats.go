package finder

import (
	"github.com/hauke96/sigolo/v2"
	"scf/matching"
	"sync/atomic"
	"time"
)

const numberOfRejections = int(matching.RejectedDuplicate) + 1

// Stats counts the outcome of all matching attempts. It's safe for concurrent use.
type Stats struct {
	outcomes      [numberOfRejections]atomic.Int64
	attempts      atomic.Int64
	anchors       atomic.Int64
	startTime     time.Time
	progressEvery int64
}

func newStats(progressEvery int) *Stats {
	return &Stats{
		startTime:     time.Now(),
		progressEvery: int64(progressEvery),
	}
}

func (s *Stats) add(rejection matching.Rejection) {
	s.outcomes[rejection].Add(1)
	attempts := s.attempts.Add(1)
	if s.progressEvery > 0 && attempts%s.progressEvery == 0 {
		sigolo.Infof("Checked %d combinations in %s", attempts, time.Since(s.startTime))
	}
}

func (s *Stats) Count(rejection matching.Rejection) int64 {
	return s.outcomes[rejection].Load()
}

func (s *Stats) Attempts() int64 { return s.attempts.Load() }

func (s *Stats) Matches() int64 { return s.Count(matching.Matched) }

func (s *Stats) Anchors() int64 { return s.anchors.Load() }

func (s *Stats) log() {
	sigolo.Infof("Processed %d anchors with %d combinations in %s", s.Anchors(), s.Attempts(), time.Since(s.startTime))
	for i := 0; i < numberOfRejections; i++ {
		rejection := matching.Rejection(i)
		sigolo.Infof("  %-12s: %d", rejection.String(), s.Count(rejection))
	}
}
