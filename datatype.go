package herkulexd

import (
	"context"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
)

type Bus interface {
	Position(id herkulex.ID) (int, error)
	Speed(id herkulex.ID) (int, error)
	Status(id herkulex.ID) (herkulex.Status, error)
	FlushBatch(b *herkulex.Batch, playTime time.Duration) error
	ScanIDs(ctx context.Context) ([]herkulex.ID, error)
}

type Publisher interface {
	Publish(s Snapshot) error
	Close() error
}

// A Snapshot is the last known state of a servo.
type Snapshot struct {
	ID         herkulex.ID     `json:"id"`
	Label      string          `json:"label"`
	Online     bool            `json:"online"`
	Position   int             `json:"position"`
	Angle      float64         `json:"angle"`
	Speed      int             `json:"speed"`
	Status     herkulex.Status `json:"status"`
	StatusText string          `json:"status_text"`
	PolledAt   time.Time       `json:"polled_at"`
}

// Changed reports whether s differs from o enough to be logged.
func (s Snapshot) Changed(o Snapshot) bool {
	const tolerance = 3

	if s.Online != o.Online || s.Status != o.Status {
		return true
	}
	return s.Position < o.Position-tolerance || s.Position > o.Position+tolerance
}

func ToPtr[T any](v T) *T {
	return &v
}

type target struct {
	id    herkulex.ID
	label string
	angle float64
	led   herkulex.LED
}

const (
	eventUpdateSnapshot  = "update-snapshot"
	eventWatch           = "watch"
	eventRefreshWatchers = "refresh-watchers"
	eventUnwatch         = "unwatch"
)

type event struct {
	name      string
	snapshot  Snapshot
	monitorID int64
	monitor   chan<- []byte
}

func genID() int64 {
	time.Sleep(time.Nanosecond)
	return time.Now().UnixNano()
}
