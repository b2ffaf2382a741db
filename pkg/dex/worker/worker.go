package worker

import (
	"context"
	"encoding/json"
	"log"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/pekdex/dexcore/pkg/dex/model"
	"github.com/pekdex/dexcore/pkg/dex/repo"
)

// Worker drains settlement audit events off JetStream into the
// settlement_events table.
type Worker struct {
	settlementEvent repo.ISettlementEvent
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		settlementEvent: repo.SettlementEvent(),
	}
}

func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	// Create durable consumer
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := cons.Fetch(10)
		if err != nil {
			if err != nats.ErrTimeout {
				log.Println("Fetch error:", err)
			}
			continue
		}

		for _, msg := range msgs {
			var ev model.SettlementEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				log.Println("unmarshal err", err)
				_ = msg.Ack()
				continue
			}
			if err := w.handleEvent(ctx, ev); err != nil {
				log.Println("handleEvent err", err)
				continue
			}
			_ = msg.Ack()
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, ev model.SettlementEvent) error {
	_, err := w.settlementEvent.Create(ctx, &ev)
	return err
}
