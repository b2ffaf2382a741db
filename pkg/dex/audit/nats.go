package audit

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/pekdex/dexcore/pkg/dex/model"
	"go.uber.org/zap"
)

// NatsRecorder publishes settlement events to a JetStream subject; the worker
// binary consumes them into the settlement_events table.
type NatsRecorder struct {
	js      nats.JetStreamContext
	subject string
}

func NewNatsRecorder(js nats.JetStreamContext, subject string) *NatsRecorder {
	return &NatsRecorder{
		js:      js,
		subject: subject,
	}
}

func (r *NatsRecorder) Record(ctx context.Context, ev *model.SettlementEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		zap.S().Warnf("marshal settlement event fail: %v", err)
		return
	}

	// audit publish is best effort; settlement outcome is already decided
	if _, err := r.js.Publish(r.subject, data); err != nil {
		zap.S().Warnf("publish settlement event fail: %v", err)
	}
}
