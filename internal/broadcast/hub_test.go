package broadcast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/decoy"
	"github.com/atharvaajmera/vigilante-ai-championship/internal/orchestrator"
)

// #region fakes
type fakeController struct {
	mu      sync.Mutex
	calls   []string
	said    []string
	initErr error
}

func (f *fakeController) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeController) Snapshot() orchestrator.Snapshot {
	return orchestrator.Snapshot{Status: orchestrator.StatusIdle, Score: 1000}
}

func (f *fakeController) InitiateCall(context.Context) error {
	f.record("initiate")
	return f.initErr
}

func (f *fakeController) Answer(context.Context) error {
	f.record("answer")
	return nil
}

func (f *fakeController) ProcessTurn(_ context.Context, u string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "say")
	f.said = append(f.said, u)
	return nil
}

func (f *fakeController) HangUp()          { f.record("hangup") }
func (f *fakeController) ToggleMute() bool { f.record("mute"); return true }

func (f *fakeController) DeployDecoy(cat decoy.Category) (decoy.Data, error) {
	f.record("decoy")
	if cat == "" {
		cat = decoy.CreditCard
	}
	return decoy.Data{Category: cat, DisplayText: "decoy " + string(cat)}, nil
}

func (f *fakeController) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// #endregion fakes

// #region helpers
func startHub(t *testing.T, ctrl Controller) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub()
	hub.Attach(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// #endregion helpers

func TestHub_InitialSnapshot(t *testing.T) {
	_, conn := startHub(t, &fakeController{})
	env := readEnvelope(t, conn)
	if env.Type != "state" || env.State == nil || env.State.Score != 1000 {
		t.Fatalf("expected initial state envelope, got %+v", env)
	}
}

func TestHub_BroadcastsStateAndAlerts(t *testing.T) {
	hub, conn := startHub(t, &fakeController{})
	readEnvelope(t, conn)
	waitFor(t, "registration", func() bool { return hub.Clients() == 1 })

	hub.OnState(orchestrator.Snapshot{Status: orchestrator.StatusRinging, Persona: "Rick Vale from National Card Services"})
	env := readEnvelope(t, conn)
	if env.Type != "state" || env.State.Status != orchestrator.StatusRinging {
		t.Errorf("expected ringing state, got %+v", env)
	}

	hub.OnAlert(orchestrator.BreachAlert(5000, 5000, 500))
	env = readEnvelope(t, conn)
	if env.Type != "alert" || env.Alert.Kind != orchestrator.AlertBreach || env.Alert.CreditsLost != 500 {
		t.Errorf("expected breach alert, got %+v", env)
	}
}

func TestHub_DispatchesActions(t *testing.T) {
	ctrl := &fakeController{}
	hub, conn := startHub(t, ctrl)
	readEnvelope(t, conn)
	waitFor(t, "registration", func() bool { return hub.Clients() == 1 })

	for _, a := range []Action{{Type: "initiate"}, {Type: "answer"}, {Type: "say", Text: "who is this?"}, {Type: "mute"}, {Type: "hangup"}} {
		if err := conn.WriteJSON(a); err != nil {
			t.Fatalf("write %s: %v", a.Type, err)
		}
		n := len(ctrl.callNames())
		waitFor(t, a.Type, func() bool { return len(ctrl.callNames()) == n+1 })
	}

	want := []string{"initiate", "answer", "say", "mute", "hangup"}
	got := ctrl.callNames()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if ctrl.said[0] != "who is this?" {
		t.Errorf("utterance not forwarded: %v", ctrl.said)
	}
}

func TestHub_DecoyReply(t *testing.T) {
	hub, conn := startHub(t, &fakeController{})
	readEnvelope(t, conn)
	waitFor(t, "registration", func() bool { return hub.Clients() == 1 })

	conn.WriteJSON(Action{Type: "decoy", Category: "ssn"})
	env := readEnvelope(t, conn)
	if env.Type != "decoy" || env.Decoy == nil || env.Decoy.Category != decoy.SSN {
		t.Fatalf("expected ssn decoy reply, got %+v", env)
	}

	conn.WriteJSON(Action{Type: "decoy", Category: "lottery_ticket"})
	env = readEnvelope(t, conn)
	if env.Type != "error" || !strings.Contains(env.Error, "lottery_ticket") {
		t.Errorf("expected unknown category error, got %+v", env)
	}
}

func TestHub_ErrorReplies(t *testing.T) {
	ctrl := &fakeController{initErr: errors.New("rate limited")}
	hub, conn := startHub(t, ctrl)
	readEnvelope(t, conn)
	waitFor(t, "registration", func() bool { return hub.Clients() == 1 })

	conn.WriteJSON(Action{Type: "dance"})
	if env := readEnvelope(t, conn); env.Type != "error" || !strings.Contains(env.Error, "dance") {
		t.Errorf("expected unknown action error, got %+v", env)
	}

	conn.WriteJSON(Action{Type: "initiate"})
	if env := readEnvelope(t, conn); env.Type != "error" || env.Error != "rate limited" {
		t.Errorf("expected controller error, got %+v", env)
	}

	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	if env := readEnvelope(t, conn); env.Type != "error" || env.Error != "malformed action" {
		t.Errorf("expected malformed action error, got %+v", env)
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, conn := startHub(t, &fakeController{})
	readEnvelope(t, conn)
	waitFor(t, "registration", func() bool { return hub.Clients() == 1 })
	conn.Close()
	waitFor(t, "unregistration", func() bool { return hub.Clients() == 0 })
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.OnState(orchestrator.Snapshot{Score: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("OnState blocked without a running hub")
	}
}
