// Package broadcast projects call snapshots to websocket dashboards and
// turns their inbound actions into controller calls.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/decoy"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/logging"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
)

// #region types

// Controller is the part of the call controller the hub drives.
type Controller interface {
	Snapshot() orchestrator.Snapshot
	InitiateCall(ctx context.Context) error
	Answer(ctx context.Context) error
	ProcessTurn(ctx context.Context, utterance string) error
	HangUp()
	ToggleMute() bool
	DeployDecoy(cat decoy.Category) (decoy.Data, error)
}

// Envelope is every outbound message.
type Envelope struct {
	Type  string                 `json:"type"` // state|alert|decoy|error
	State *orchestrator.Snapshot `json:"state,omitempty"`
	Alert *orchestrator.Alert    `json:"alert,omitempty"`
	Decoy *decoy.Data            `json:"decoy,omitempty"`
	Error string                 `json:"error,omitempty"`
}

// Action is an inbound dashboard command.
type Action struct {
	Type     string `json:"type"` // initiate|answer|say|hangup|mute|decoy
	Text     string `json:"text,omitempty"`
	Category string `json:"category,omitempty"`
}

// #endregion types

// #region hub

// Hub maintains the set of active dashboards and fans out projections.
// It implements orchestrator.Observer; OnState and OnAlert never block.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex

	ctrl Controller
	ctx  context.Context
	log  *slog.Logger
}

// NewHub returns a hub with no controller attached.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		ctx:        context.Background(),
		log:        logging.New("hub"),
	}
}

// Attach sets the controller that inbound actions are routed to. The hub is
// usually the controller's observer, so it is attached after construction.
func (h *Hub) Attach(ctrl Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctrl = ctrl
}

func (h *Hub) controller() Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctrl
}

// Run handles registration and fan-out until ctx is done. Actions started
// by dashboards run under ctx.
func (h *Hub) Run(ctx context.Context) {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Info("hub shutting down")
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("dashboard connected", "clients", n)
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("dashboard disconnected", "clients", len(h.clients))
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.log.Warn("dropping slow dashboard")
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients reports how many dashboards are registered.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// #endregion hub

// #region observer

// OnState queues a snapshot for every dashboard.
func (h *Hub) OnState(s orchestrator.Snapshot) {
	h.publish(Envelope{Type: "state", State: &s})
}

// OnAlert queues an alert for every dashboard.
func (h *Hub) OnAlert(a orchestrator.Alert) {
	h.publish(Envelope{Type: "alert", Alert: &a})
}

func (h *Hub) publish(env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.log.Error("encode envelope", "type", env.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("broadcast queue full, dropping", "type", env.Type)
	}
}

// reply sends an envelope to one dashboard if it is still registered.
func (h *Hub) reply(c *Client, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.log.Error("encode reply", "type", env.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// #endregion observer

// #region serve

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeWS upgrades a dashboard connection, sends it the current snapshot
// and starts its pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := NewClient(h, conn)

	if ctrl := h.controller(); ctrl != nil {
		snap := ctrl.Snapshot()
		if payload, err := json.Marshal(Envelope{Type: "state", State: &snap}); err == nil {
			c.send <- payload
		}
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.WritePump()
	go c.ReadPump()
}

// #endregion serve

// #region dispatch

// dispatch runs one action. Controller calls can block for the length of a
// model round trip, so each action gets its own goroutine.
func (h *Hub) dispatch(c *Client, a Action) {
	ctrl := h.controller()
	if ctrl == nil {
		h.reply(c, Envelope{Type: "error", Error: "no call controller attached"})
		return
	}
	h.mu.Lock()
	ctx := h.ctx
	h.mu.Unlock()

	go func() {
		var err error
		switch a.Type {
		case "initiate":
			err = ctrl.InitiateCall(ctx)
		case "answer":
			err = ctrl.Answer(ctx)
		case "say":
			err = ctrl.ProcessTurn(ctx, a.Text)
		case "hangup":
			ctrl.HangUp()
		case "mute":
			ctrl.ToggleMute()
		case "decoy":
			var cat decoy.Category
			if cat, err = decoy.ParseCategory(a.Category); err == nil {
				var d decoy.Data
				if d, err = ctrl.DeployDecoy(cat); err == nil {
					h.reply(c, Envelope{Type: "decoy", Decoy: &d})
				}
			}
		default:
			h.log.Warn("unknown dashboard action", "type", a.Type)
			h.reply(c, Envelope{Type: "error", Error: "unknown action " + a.Type})
			return
		}
		if err != nil {
			h.log.Debug("dashboard action failed", "type", a.Type, "error", err)
			h.reply(c, Envelope{Type: "error", Error: err.Error()})
		}
	}()
}

// #endregion dispatch
