// Package api exposes a read-only monitor over HTTP: playback state and
// throttle statistics as JSON, plus a WebSocket stream of live positions
// for the editor's scene view. It never mutates pipeline state.
package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/soundpath/motiontx/stream"
)

// Server serves the monitor endpoints.
type Server struct {
	addr     string
	streamer *stream.Streamer
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewServer creates an instance of a monitor Server.
func NewServer(addr string, streamer *stream.Streamer, log *zap.Logger) *Server {
	return &Server{
		addr:     addr,
		streamer: streamer,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Serve blocks listening on the configured address.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWS)

	s.log.Info("monitor listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, mux)
}

type statusResponse struct {
	Playbacks []stream.PlaybackStatus `json:"playbacks"`
	Stats     stream.ThrottleStats    `json:"stats"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	playbacks, _, stats := s.streamer.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statusResponse{Playbacks: playbacks, Stats: stats}); err != nil {
		s.log.Warn("status encode failed", zap.Error(err))
	}
}

type wsTrack struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Color string  `json:"color"`
}

type wsFrame struct {
	Tracks []wsTrack            `json:"tracks"`
	Stats  stream.ThrottleStats `json:"stats"`
}

// handleWS pushes the latest positions to the client at a fixed display
// rate, independent of the tick and flush rates.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		_, positions, stats := s.streamer.Snapshot()
		frame := wsFrame{Tracks: make([]wsTrack, 0, len(positions)), Stats: stats}
		for idx, pos := range positions {
			frame.Tracks = append(frame.Tracks, wsTrack{
				Index: idx,
				X:     pos.X,
				Y:     pos.Y,
				Z:     pos.Z,
				Color: TrackColor(idx),
			})
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

// TrackColor assigns a stable, well-separated display color per track by
// walking the hue wheel with the golden ratio.
func TrackColor(index int) string {
	hue := math.Mod(float64(index)*137.50776, 360)
	return colorful.Hsv(hue, 0.72, 0.92).Hex()
}
