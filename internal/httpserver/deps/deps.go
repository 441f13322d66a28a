package deps

import (
	"time"

	"rickmorty/viewer/internal/metrics"
	"rickmorty/viewer/internal/view"

	"golang.org/x/time/rate"
)

// ViewController is the part of the view controller the handlers drive.
type ViewController interface {
	Snapshot() view.ViewState
	Trigger() error
	Select(id int) error
	Deselect()
	Reset() error
}

type Deps struct {
	View            ViewController
	Metrics         *metrics.Metrics
	LoadMoreLimiter *rate.Limiter // nil disables limiting
	RefreshSeconds  int           // list page refresh interval while loading
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
}
