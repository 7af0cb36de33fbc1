package share

import (
	"time"

	"ayudame-ya/internal/session"
)

// stoppedClock never fires.
type stoppedClock struct{}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (stoppedClock) AfterFunc(time.Duration, func()) session.Timer { return noopTimer{} }
