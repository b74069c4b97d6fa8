// Package transport carries position batches to the downstream device. The
// pipeline depends only on the Send contract; the MQTT and OSC adapters
// supply the wire formats.
package transport

import (
	"context"
	"time"

	"github.com/soundpath/motiontx/motion"
)

// Entry is the freshest position of one track within a batch.
type Entry struct {
	TrackIndex int
	Position   motion.Position
	// Coord names the coordinate system the position is expressed in,
	// "xyz" or "aed".
	Coord string
}

// Batch is one coalesced flush of track positions.
type Batch struct {
	Entries   []Entry
	Timestamp time.Time
}

// Transport sends a batch to the downstream device. Send may block for the
// duration of the network round trip; the scheduler serializes calls so at
// most one send is ever in flight.
type Transport interface {
	Send(ctx context.Context, batch Batch) error
}
