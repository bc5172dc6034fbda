package main

// TransferItem is an immutable snapshot of one accepted stream transfer.
// The monitor builds a fresh item per handshake; nothing retains a pointer
// into monitor scratch state, so an item never changes after publication no
// matter what the bus does next.
type TransferItem struct {
	Data Value
	Keep Value
	Strb Value
	Last bool
	ID   Value
	Dest Value
	User Value

	// Tick is the tick the handshake was accepted on; Seq numbers accepted
	// transfers from 1.
	Tick uint64
	Seq  uint64
}

// snapshotTransfer copies the bus fields into a new item, masked to the
// declared widths.
func snapshotTransfer(bus *BusSignals, fw FieldWidths, tick, seq uint64) *TransferItem {
	return &TransferItem{
		Data: bus.Data.Masked(fw.Data),
		Keep: bus.Keep.Masked(fw.Keep),
		Strb: bus.Strb.Masked(fw.Strb),
		Last: bus.Last,
		ID:   bus.ID.Masked(fw.ID),
		Dest: bus.Dest.Masked(fw.Dest),
		User: bus.User.Masked(fw.User),
		Tick: tick,
		Seq:  seq,
	}
}
