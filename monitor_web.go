package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/example/streambench/hooks"
)

// liveEvent is the JSON frame pushed to websocket clients.
type liveEvent struct {
	Kind string `json:"kind"` // "transfer", "mismatch", "drop", "summary"
	Tick uint64 `json:"tick,omitempty"`

	Item *TransferItem `json:"item,omitempty"`

	Expected      string `json:"expected,omitempty"`
	Actual        string `json:"actual,omitempty"`
	Indeterminate bool   `json:"indeterminate,omitempty"`

	Subscriber string `json:"subscriber,omitempty"`
	Dropped    uint64 `json:"dropped,omitempty"`

	Summary *hooks.RunContext `json:"summary,omitempty"`
}

// WebMonitor serves a live feed of harness events over a websocket. It is
// the optional reporting surface: attaching it never changes run behaviour
// because it only consumes broker hooks.
type WebMonitor struct {
	addr string
	hub  *wsHub
}

// NewWebMonitor creates a monitor bound to the broker. Call Serve to start
// listening.
func NewWebMonitor(addr string, broker *hooks.Broker) *WebMonitor {
	m := &WebMonitor{addr: addr, hub: newHub()}
	broker.RegisterBundle(hooks.Bundle{
		Transfer: []hooks.TransferHook{func(ctx *hooks.TransferContext) {
			item, _ := ctx.Item.(*TransferItem)
			m.hub.broadcastEvent(&liveEvent{Kind: "transfer", Tick: ctx.Tick, Item: item})
		}},
		Mismatch: []hooks.MismatchHook{func(ctx *hooks.MismatchContext) {
			m.hub.broadcastEvent(&liveEvent{
				Kind:          "mismatch",
				Tick:          ctx.Tick,
				Expected:      ctx.Expected,
				Actual:        ctx.Actual,
				Indeterminate: ctx.Indeterminate,
			})
		}},
		Drop: []hooks.DropHook{func(ctx *hooks.DropContext) {
			m.hub.broadcastEvent(&liveEvent{Kind: "drop", Subscriber: ctx.Subscriber, Dropped: ctx.Dropped})
		}},
		RunCompleted: []hooks.RunCompletedHook{func(ctx *hooks.RunContext) {
			m.hub.broadcastEvent(&liveEvent{Kind: "summary", Summary: ctx})
		}},
	})
	return m
}

// Serve starts the HTTP listener. Blocks; run it on its own goroutine.
func (m *WebMonitor) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.hub.handle)
	GetLogger().Infof("live monitor listening on %s", m.addr)
	return http.ListenAndServe(m.addr, mux)
}

type wsHub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan *websocket.Conn
	remove    chan *websocket.Conn
	broadcast chan []byte
}

func newHub() *wsHub {
	hub := &wsHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan *websocket.Conn),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan []byte, 64),
	}
	go hub.run()
	return hub
}

func (h *wsHub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					GetLogger().Warnf("failed to send event to websocket client: %v", err)
					delete(h.clients, conn)
					conn.Close()
				}
			}
		}
	}
}

func (h *wsHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		GetLogger().Errorf("websocket upgrade failed: %v", err)
		return
	}
	h.register <- conn

	go func() {
		defer func() { h.remove <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					GetLogger().Warnf("websocket error: %v", err)
				}
				return
			}
		}
	}()
}

// broadcastEvent serializes and queues the event; a saturated hub drops the
// frame rather than stalling the emitting role.
func (h *wsHub) broadcastEvent(ev *liveEvent) {
	if ev == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		GetLogger().Errorf("failed to marshal live event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}
