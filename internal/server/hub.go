package server

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Snapshot is the detector state published once per frame.
type Snapshot struct {
	Status           string    `json:"status"`
	Holding          bool      `json:"holding"`
	Signal           bool      `json:"signal"`
	Display          string    `json:"display"`
	Hands            int       `json:"hands"`
	PendingSince     time.Time `json:"pending_since,omitzero"`
	SpotifyModeSince time.Time `json:"spotify_mode_since,omitzero"`
	PlaybackReady    bool      `json:"playback_available"`
	Device           string    `json:"device,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Hub hands the latest snapshot and frame from the frame loop to HTTP
// clients. Publishing never blocks: slow subscribers only see the newest
// value.
type Hub struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	frame     []byte
	snapSubs  map[chan Snapshot]struct{}
	frameSubs map[chan []byte]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		snapSubs:  make(map[chan Snapshot]struct{}),
		frameSubs: make(map[chan []byte]struct{}),
	}
}

// Publish stores s and offers it to every subscriber.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = s
	for ch := range h.snapSubs {
		offer(ch, s)
	}
}

// PublishFrame stores a JPEG frame and offers it to every stream client.
func (h *Hub) PublishFrame(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = jpeg
	for ch := range h.frameSubs {
		offer(ch, jpeg)
	}
}

// offer replaces whatever is buffered in ch with v.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Latest returns the most recent snapshot.
func (h *Hub) Latest() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot
}

// LatestFrame returns the most recent JPEG frame, or nil.
func (h *Hub) LatestFrame() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame
}

// Subscribe returns a channel of snapshots and a func that removes it.
func (h *Hub) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	h.mu.Lock()
	h.snapSubs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.snapSubs, ch)
		h.mu.Unlock()
	}
}

// SubscribeFrames returns a channel of JPEG frames and a func that removes it.
func (h *Hub) SubscribeFrames() (<-chan []byte, func()) {
	ch := make(chan []byte, 1)
	h.mu.Lock()
	h.frameSubs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.frameSubs, ch)
		h.mu.Unlock()
	}
}

// WantsFrames reports whether any stream client is connected, so the frame
// loop can skip JPEG encoding when nobody is watching.
func (h *Hub) WantsFrames() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.frameSubs) > 0
}

// EncodeFrame encodes mat as JPEG.
func EncodeFrame(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	b := buf.GetBytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
