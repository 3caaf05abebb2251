package cloud

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/orbit-drive/orbit/internal/logging"
)

// TimingEnabled returns true if ORBIT_TIMING=1 is set.
// When enabled, providers log how long each remote call took.
func TimingEnabled() bool {
	return os.Getenv("ORBIT_TIMING") == "1"
}

// Timer tracks elapsed time for a named remote call.
// Stop is idempotent; only the first call logs.
type Timer struct {
	name    string
	start   time.Time
	logger  *logging.Logger
	stopped int32
}

// StartTimer creates a new timer. A nil logger discards output.
func StartTimer(logger *logging.Logger, name string) *Timer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Timer{name: name, start: time.Now(), logger: logger}
}

// Stop logs the elapsed time when timing is enabled and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if atomic.CompareAndSwapInt32(&t.stopped, 0, 1) && TimingEnabled() {
		t.logger.Info().Str("phase", t.name).Dur("elapsed", elapsed).Msg("timing")
	}
	return elapsed
}

// StopWithCount is Stop with the number of items the call returned.
func (t *Timer) StopWithCount(count int) time.Duration {
	elapsed := time.Since(t.start)
	if atomic.CompareAndSwapInt32(&t.stopped, 0, 1) && TimingEnabled() {
		t.logger.Info().Str("phase", t.name).Dur("elapsed", elapsed).Int("count", count).Msg("timing")
	}
	return elapsed
}
