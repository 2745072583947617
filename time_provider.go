package checkmate

import "time"

// TimeProvider abstracts time operations to enable deterministic testing.
// By default the system clock is used; tests inject a mock to get
// predictable processing-time statistics.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider implements TimeProvider using the system clock.
type DefaultTimeProvider struct{}

// Now returns the current system time.
func (DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Since returns the duration elapsed since t using the system clock.
func (DefaultTimeProvider) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// getTimeProvider returns tp or the system clock if tp is nil.
func getTimeProvider(tp TimeProvider) TimeProvider {
	if tp != nil {
		return tp
	}
	return DefaultTimeProvider{}
}
