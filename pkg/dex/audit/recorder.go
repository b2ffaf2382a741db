package audit

import (
	"context"

	"github.com/pekdex/dexcore/pkg/dex/model"
)

// Recorder receives one event per settlement delivery attempt.
type Recorder interface {
	Record(ctx context.Context, ev *model.SettlementEvent)
}

// Recorders fans an event out to every recorder.
type Recorders []Recorder

func (rs Recorders) Record(ctx context.Context, ev *model.SettlementEvent) {
	for _, r := range rs {
		r.Record(ctx, ev)
	}
}

type nopRecorder struct{}

func (nopRecorder) Record(ctx context.Context, ev *model.SettlementEvent) {}

func NopRecorder() Recorder {
	return nopRecorder{}
}
