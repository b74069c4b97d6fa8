package transport

import (
	"context"
	"fmt"
	"math"

	"github.com/hypebeast/go-osc/osc"
)

// OSC sends position batches to the device as an OSC bundle over UDP, one
// message per track: /track/<index>/xyz or /track/<index>/aed.
type OSC struct {
	client *osc.Client
}

// NewOSC creates an instance of an OSC transport.
func NewOSC(host string, port int) *OSC {
	return &OSC{client: osc.NewClient(host, port)}
}

// Send bundles the batch and fires it at the device. UDP has no
// acknowledgement; a lost datagram is recovered by the next flush, which
// resends the latest position anyway.
func (o *OSC) Send(ctx context.Context, batch Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bundle := osc.NewBundle(batch.Timestamp)
	for _, e := range batch.Entries {
		bundle.Append(EntryMessage(e))
	}
	if err := o.client.Send(bundle); err != nil {
		return fmt.Errorf("osc send: %w", err)
	}
	return nil
}

// EntryMessage converts one batch entry to its OSC message. Cartesian
// entries carry scene coordinates directly; polar entries are converted to
// the device's azimuth (degrees), elevation (degrees), distance form.
func EntryMessage(e Entry) *osc.Message {
	if e.Coord == "aed" {
		msg := osc.NewMessage(fmt.Sprintf("/track/%d/aed", e.TrackIndex))
		a, el, d := toAED(e.Position.X, e.Position.Y, e.Position.Z)
		msg.Append(float32(a))
		msg.Append(float32(el))
		msg.Append(float32(d))
		return msg
	}
	msg := osc.NewMessage(fmt.Sprintf("/track/%d/xyz", e.TrackIndex))
	msg.Append(float32(e.Position.X))
	msg.Append(float32(e.Position.Y))
	msg.Append(float32(e.Position.Z))
	return msg
}

// toAED converts cartesian scene coordinates to azimuth/elevation degrees
// and distance.
func toAED(x, y, z float64) (azimuth, elevation, distance float64) {
	distance = math.Sqrt(x*x + y*y + z*z)
	azimuth = math.Atan2(x, y) * 180 / math.Pi
	if distance > 1e-12 {
		elevation = math.Asin(z/distance) * 180 / math.Pi
	}
	return azimuth, elevation, distance
}
