package main

import (
	"github.com/example/streambench/hooks"
)

// StreamMonitor samples a valid/ready-qualified bus once per tick. A
// transfer is accepted iff both qualifiers held at the tick boundary; only
// then is a fresh TransferItem built and handed to the publisher. Valid
// without ready retains nothing: the source may hold or change the payload
// while waiting, so speculative sampling would alias stale data.
type StreamMonitor struct {
	bus       *BusSignals
	widths    FieldWidths
	publisher *TransferPublisher
	broker    *hooks.Broker

	observed uint64
}

// NewStreamMonitor creates a monitor over the given bus.
func NewStreamMonitor(bus *BusSignals, widths FieldWidths, publisher *TransferPublisher, broker *hooks.Broker) *StreamMonitor {
	return &StreamMonitor{
		bus:       bus,
		widths:    widths,
		publisher: publisher,
		broker:    broker,
	}
}

// Sample reads the bus for one tick. Must be called in the sample phase,
// once per tick. There is no error state: no handshake means no transfer.
func (m *StreamMonitor) Sample(tick uint64) *TransferItem {
	if !m.bus.Valid || !m.bus.Ready {
		return nil
	}
	m.observed++
	item := snapshotTransfer(m.bus, m.widths, tick, m.observed)
	if m.publisher != nil {
		m.publisher.Publish(item)
	}
	m.broker.EmitTransfer(&hooks.TransferContext{Tick: tick, Seq: item.Seq, Item: item})
	return item
}

// Observed returns the number of accepted transfers seen so far.
func (m *StreamMonitor) Observed() uint64 { return m.observed }
