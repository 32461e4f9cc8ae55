package voice

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/scenario"
)

// #region console

// Console is the offline fallback: it prints the line with the delivery
// it would have had. It always succeeds.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole writes to w, or stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

// Delivery returns rate, pitch and volume for a call type.
func Delivery(t scenario.CallType) (rate, pitch, volume float64) {
	if t == scenario.Scam {
		return 1.1, 0.8, 1.0
	}
	return 0.9, 1.0, 0.9
}

// Speak implements Speaker.
func (c *Console) Speak(_ context.Context, req Request) {
	rate, pitch, volume := Delivery(req.CallType)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[voice rate=%.1f pitch=%.1f volume=%.1f] %s\n", rate, pitch, volume, req.Text)
}

// #endregion console
