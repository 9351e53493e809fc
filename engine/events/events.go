// Package events fans applied action results out to subscribers such as
// the narrator and persistence. Delivery is in-memory and single pass:
// a handler may not publish back onto the bus it is serving.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/nathoo/rulecore/engine/action"
)

// TopicResults carries every applied action result.
const TopicResults = "action.results"

// Metadata keys copied onto each message.
const (
	MetaActionID = "action_id"
	MetaKind     = "kind"
	MetaActor    = "actor_id"
	MetaOutcome  = "outcome"
)

// Handler receives one result. Errors are logged; delivery is not retried.
type Handler func(ctx context.Context, res action.Result) error

// Bus publishes results over a watermill GoChannel.
type Bus struct {
	ch  *gochannel.GoChannel
	log *slog.Logger
}

// NewBus returns an in-memory bus. A nil logger uses slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	ch := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64, BlockPublishUntilSubscriberAck: true},
		watermill.NewStdLogger(false, false),
	)
	return &Bus{ch: ch, log: logger}
}

// Publish encodes res and returns once every subscriber has handled it,
// so subscribers see results in publish order.
func (b *Bus) Publish(res action.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", res.ActionID, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetaActionID, res.ActionID)
	msg.Metadata.Set(MetaOutcome, string(res.Outcome))
	if a := res.Source.Action; a != nil {
		msg.Metadata.Set(MetaKind, string(a.Kind()))
		msg.Metadata.Set(MetaActor, a.Meta().ActorID)
	}
	return b.ch.Publish(TopicResults, msg)
}

// Subscribe starts delivering results to h until ctx is done or the bus
// closes. It returns once the subscription is live.
func (b *Bus) Subscribe(ctx context.Context, h Handler) error {
	messages, err := b.ch.Subscribe(ctx, TopicResults)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", TopicResults, err)
	}
	go func() {
		for msg := range messages {
			var res action.Result
			if err := json.Unmarshal(msg.Payload, &res); err != nil {
				b.log.Error("dropping undecodable result", "msg_id", msg.UUID, "err", err)
				msg.Ack()
				continue
			}
			if err := h(ctx, res); err != nil {
				b.log.Warn("result handler failed", "action_id", res.ActionID, "err", err)
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close stops every subscription.
func (b *Bus) Close() error {
	return b.ch.Close()
}
