// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package websocket pushes announcement changes to connected browsers so
// open pages refresh without polling. One process-wide Hub fans out to
// every client; admin mutations feed it through Broadcast.
package websocket

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/metrics"
)

// Message event types.
const (
	MessageNotificationCreated = "notification_created"
	MessageNotificationUpdated = "notification_updated"
	MessageNotificationDeleted = "notification_deleted"
)

// Message is one push event.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub owns the client set. All membership changes go through its run
// loop; no lock guards the map because only Run touches it.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates an idle hub; call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run processes membership and broadcast events until ctx is cancelled.
// On shutdown every client connection is closed.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			client.close()
		}
		metrics.WebSocketClients.Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			metrics.WebSocketClients.Set(float64(len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				metrics.WebSocketClients.Set(float64(len(h.clients)))
			}
		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// A client that cannot keep up is dropped rather
					// than allowed to stall everyone else.
					delete(h.clients, client)
					client.close()
				}
			}
			metrics.WebSocketClients.Set(float64(len(h.clients)))
		}
	}
}

// Broadcast queues msg for delivery to every connected client. When the
// hub is saturated the message is dropped; push is best-effort and the
// authoritative state lives behind the REST API anyway.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logging.Error().Err(err).Str("type", msg.Type).Msg("failed to encode push message")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		logging.Warn().Str("type", msg.Type).Msg("push queue full, dropping message")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin enforcement happens in the CORS layer; the
	// handshake accepts any origin that made it through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request and attaches the client to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(h, conn)
	h.register <- client

	go client.writePump()
	go client.readPump()
}
