package services

import "time"

// Clock is the time source for created_at, updated_at and the update rate limit.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// advance returns max(prev, now) so stored timestamps never move backwards.
func advance(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}

// elapsedSince treats a clock that has gone backwards as no time elapsed.
func elapsedSince(prev, now time.Time) time.Duration {
	if d := now.Sub(prev); d > 0 {
		return d
	}
	return 0
}
