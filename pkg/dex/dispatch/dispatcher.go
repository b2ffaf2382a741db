package dispatch

import (
	"context"
	"net/http"
	"time"

	"github.com/pekdex/dexcore/config"
	"github.com/pekdex/dexcore/pkg/dex/audit"
	"github.com/pekdex/dexcore/pkg/dex/model"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Dispatcher settles one trade intent through an ordered chain of delivery
// mechanisms, stopping at the first success. Exhausting the chain is a
// terminal failure for that intent.
type Dispatcher struct {
	mechanisms []Mechanism
	recorder   audit.Recorder
	log        *zap.SugaredLogger
}

func NewDispatcher(cfg *config.SettlementConfig, recorder audit.Recorder) *Dispatcher {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	// each attempt gets its own bounded timeout
	client := &http.Client{Timeout: timeout}

	if recorder == nil {
		recorder = audit.NopRecorder()
	}

	return &Dispatcher{
		mechanisms: []Mechanism{
			&broadcastMechanism{endpoint: cfg.NodeEndpoint, credentials: cfg.Credentials, client: client},
			&relayMechanism{endpoint: cfg.RelayEndpoint, credentials: cfg.Credentials, client: client},
			&routerMechanism{endpoint: cfg.RouterEndpoint, client: client},
		},
		recorder: recorder,
		log:      zap.S().With("component", "dispatch"),
	}
}

// NewDispatcherWithMechanisms is used by tests to inject a custom chain.
func NewDispatcherWithMechanisms(mechanisms []Mechanism, recorder audit.Recorder) *Dispatcher {
	if recorder == nil {
		recorder = audit.NopRecorder()
	}
	return &Dispatcher{
		mechanisms: mechanisms,
		recorder:   recorder,
		log:        zap.S().With("component", "dispatch"),
	}
}

func (d *Dispatcher) Execute(ctx context.Context, intent *model.TradeIntent) (string, error) {
	fields := []interface{}{
		"pair", intent.Symbol(),
		"quantity", intent.Quantity.String(),
		"price", intent.Price.String(),
		"account", intent.Account,
		"reference", intent.Reference(),
	}

	for _, m := range d.mechanisms {
		ref, err := m.Deliver(ctx, intent)
		if err != nil {
			d.record(ctx, intent, m.Name(), model.SettlementOutcomeFailure, err.Error())
			d.log.Warnw("settlement mechanism failed", append(fields, "mechanism", m.Name(), "err", err)...)
			continue
		}

		d.record(ctx, intent, m.Name(), model.SettlementOutcomeSuccess, ref)
		d.log.Infow("settlement delivered", append(fields, "mechanism", m.Name(), "settlement_ref", ref)...)
		return ref, nil
	}

	d.log.Errorw("settlement exhausted", fields...)
	return "", errSettlementExhausted
}

func (d *Dispatcher) record(ctx context.Context, intent *model.TradeIntent, mechanism string, outcome model.SettlementOutcome, detail string) {
	d.recorder.Record(ctx, model.NewSettlementEvent(intent, mechanism, outcome, detail, time.Now()))
}
