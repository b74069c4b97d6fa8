package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT publishes position batches as binary frames to one topic.
type MQTT struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTT creates an instance of an MQTT transport.
func NewMQTT(client mqtt.Client, topic string, qos byte) *MQTT {
	return &MQTT{client: client, topic: topic, qos: qos}
}

// Send publishes the batch and waits for the broker acknowledgement, so the
// measured send duration reflects real downstream latency.
func (m *MQTT) Send(ctx context.Context, batch Batch) error {
	payload := MarshalBatch(batch)
	token := m.client.Publish(m.topic, m.qos, false, payload)

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

const (
	coordCodeXYZ = 0
	coordCodeAED = 1
)

// MarshalBatch encodes a batch as a little-endian binary frame:
// uint16 entry count, then per entry uint16 track index, uint8 coordinate
// code and three float64 components.
func MarshalBatch(batch Batch) []byte {
	data := make([]byte, 2, 2+len(batch.Entries)*27)
	binary.LittleEndian.PutUint16(data, uint16(len(batch.Entries)))
	for _, e := range batch.Entries {
		var idx [2]byte
		binary.LittleEndian.PutUint16(idx[:], uint16(e.TrackIndex))
		data = append(data, idx[:]...)

		code := byte(coordCodeXYZ)
		if e.Coord == "aed" {
			code = coordCodeAED
		}
		data = append(data, code)

		for _, v := range [3]float64{e.Position.X, e.Position.Y, e.Position.Z} {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
			data = append(data, b[:]...)
		}
	}
	return data
}

// UnmarshalBatch decodes a frame produced by MarshalBatch. The receiving
// side of the integration tests uses it; the device implements the same
// layout natively.
func UnmarshalBatch(data []byte) (Batch, error) {
	var batch Batch
	if len(data) < 2 {
		return batch, fmt.Errorf("transport: frame too short: %d bytes", len(data))
	}
	count := int(binary.LittleEndian.Uint16(data))
	const entrySize = 27
	if len(data) != 2+count*entrySize {
		return batch, fmt.Errorf("transport: frame length %d does not match %d entries", len(data), count)
	}

	batch.Entries = make([]Entry, 0, count)
	off := 2
	for i := 0; i < count; i++ {
		var e Entry
		e.TrackIndex = int(binary.LittleEndian.Uint16(data[off:]))
		if data[off+2] == coordCodeAED {
			e.Coord = "aed"
		} else {
			e.Coord = "xyz"
		}
		e.Position.X = math.Float64frombits(binary.LittleEndian.Uint64(data[off+3:]))
		e.Position.Y = math.Float64frombits(binary.LittleEndian.Uint64(data[off+11:]))
		e.Position.Z = math.Float64frombits(binary.LittleEndian.Uint64(data[off+19:]))
		batch.Entries = append(batch.Entries, e)
		off += entrySize
	}
	return batch, nil
}
