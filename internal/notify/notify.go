// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package notify publishes entity-change notifications. Writes collect
// their changes in a Batch and flush it once the enclosing operation
// has committed, so subscribers never observe a change that was rolled
// back.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/gridwatch/gridwatch/internal/logging"
	"github.com/gridwatch/gridwatch/internal/metrics"
)

// TopicEntityChanged carries one message per changed entity.
const TopicEntityChanged = "entity.changed"

// Operation names carried in change events.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event describes one entity change.
type Event struct {
	Entity      string `json:"entity"`
	ID          string `json:"id,omitempty"`
	Operation   string `json:"operation"`
	AtUTCMillis int64  `json:"at_utc_millis"`
}

// Notifier owns the in-process pub/sub channel for change events.
type Notifier struct {
	pubsub *gochannel.GoChannel
}

// New creates a Notifier backed by an in-process channel.
func New() *Notifier {
	return &Notifier{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		),
	}
}

// Subscribe returns a channel of change messages for a topic.
func (n *Notifier) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return n.pubsub.Subscribe(ctx, topic)
}

// Close shuts the channel down; pending subscribers are released.
func (n *Notifier) Close() error {
	return n.pubsub.Close()
}

// NewBatch starts an empty unit of work.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Publish emits a single event immediately, outside any batch. Used by
// the consolidation engine, whose row updates are individually final.
func (n *Notifier) Publish(event Event) {
	if event.AtUTCMillis == 0 {
		event.AtUTCMillis = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal change event")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := n.pubsub.Publish(TopicEntityChanged, msg); err != nil {
		logging.Warn().Err(err).Str("entity", event.Entity).Msg("Failed to publish change event")
		return
	}
	metrics.NotificationsFlushed.Inc()
}

// Batch accumulates change events for one store operation. Events are
// deduplicated so a bulk insert of many programs produces one message
// per touched row at most.
type Batch struct {
	notifier *Notifier
	events   []Event
	seen     map[string]struct{}
}

// Add records a change for later flushing.
func (b *Batch) Add(entity, id, operation string) {
	key := fmt.Sprintf("%s/%s/%s", entity, id, operation)
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.events = append(b.events, Event{Entity: entity, ID: id, Operation: operation})
}

// Len reports the number of pending events.
func (b *Batch) Len() int {
	return len(b.events)
}

// Flush publishes all pending events and empties the batch. Call only
// after the write that produced the events has committed.
func (b *Batch) Flush() {
	now := time.Now().UnixMilli()
	for _, ev := range b.events {
		ev.AtUTCMillis = now
		b.notifier.Publish(ev)
	}
	b.events = nil
	b.seen = nil
}
