package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub owns the network side: subscriber connections and the per-tick command
// queue. The World owns the simulation; the hub only feeds and drains it.
type Hub struct {
	world *World

	mu          sync.Mutex
	subscribers map[string]*subscriber
	pending     []Command

	tick uint64
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newHub(world *World) *Hub {
	return &Hub{
		world:       world,
		subscribers: make(map[string]*subscriber),
	}
}

// Join registers a new player and returns the join payload.
func (h *Hub) Join() joinMessage {
	playerID := uuid.NewString()
	h.world.AddPlayer(playerID, time.Now())
	return joinMessage{
		Type:            "join",
		ProtocolVersion: ProtocolVersion,
		PlayerID:        playerID,
		Summary:         h.world.CurrentSummary(),
	}
}

// Subscribe associates a WebSocket connection with an existing player,
// replacing any previous connection for the same id.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) *subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	h.subscribers[playerID] = sub
	return sub
}

// Disconnect removes a player from both the hub and the simulation.
func (h *Hub) Disconnect(playerID, reason string) {
	h.mu.Lock()
	sub, ok := h.subscribers[playerID]
	if ok {
		delete(h.subscribers, playerID)
	}
	h.mu.Unlock()

	if ok {
		sub.conn.Close()
	}
	h.world.RemovePlayer(playerID, reason)
}

// QueueCommand buffers a command for the next tick.
func (h *Hub) QueueCommand(cmd Command) {
	h.mu.Lock()
	h.pending = append(h.pending, cmd)
	h.mu.Unlock()
}

func (h *Hub) drainCommands() []Command {
	h.mu.Lock()
	commands := h.pending
	h.pending = nil
	h.mu.Unlock()
	return commands
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(tickRate)
			}
			last = now

			h.tick++
			result := h.world.Step(h.tick, now, dt, h.drainCommands())

			for _, id := range result.Disconnected {
				h.closeSubscriber(id)
			}
			h.broadcastState(h.world.Snapshot())
		}
	}
}

func (h *Hub) closeSubscriber(playerID string) {
	h.mu.Lock()
	sub, ok := h.subscribers[playerID]
	if ok {
		delete(h.subscribers, playerID)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// broadcastState sends the latest world snapshot to every subscriber.
func (h *Hub) broadcastState(msg stateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id, "write_failed")
		}
	}
}

// writeTo sends one message to a single subscriber under its write lock.
func (h *Hub) writeTo(sub *subscriber, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sub.conn.WriteMessage(websocket.TextMessage, data)
}
