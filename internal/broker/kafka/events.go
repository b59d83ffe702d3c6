package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/BearBump/ParcelDesk/internal/broker/messages"
	"github.com/pkg/errors"
)

// StatusEvents publishes parcel status transitions to a single topic,
// keyed by parcel id.
type StatusEvents struct {
	p     *Producer
	topic string
}

func NewStatusEvents(p *Producer, topic string) *StatusEvents {
	return &StatusEvents{p: p, topic: topic}
}

func (e *StatusEvents) PublishStatusUpdated(ctx context.Context, msg messages.ParcelStatusUpdated) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode status event")
	}
	key := []byte(strconv.FormatUint(msg.ParcelID, 10))
	return e.p.Publish(ctx, e.topic, key, b)
}
