// Package listen supplies finalized user utterances to a call.
package listen

import (
	"strings"
	"sync"
)

// #region interface

// Listener is a speech-to-text source. Start opens a listening window;
// the next finalized utterance is delivered on Utterances and closes it.
type Listener interface {
	Supported() bool
	Start() error
	Stop()
	Reset()
	Listening() bool
	Utterances() <-chan string
}

// #endregion interface

// #region line-listener

// LineListener turns typed or pushed lines into utterances. Lines fed
// outside a listening window are refused.
type LineListener struct {
	mu        sync.Mutex
	listening bool
	out       chan string
}

// NewLineListener returns a listener with a small delivery buffer.
func NewLineListener() *LineListener {
	return &LineListener{out: make(chan string, 8)}
}

// Supported implements Listener.
func (l *LineListener) Supported() bool { return true }

// Start implements Listener. Starting twice is a no-op.
func (l *LineListener) Start() error {
	l.mu.Lock()
	l.listening = true
	l.mu.Unlock()
	return nil
}

// Stop implements Listener.
func (l *LineListener) Stop() {
	l.mu.Lock()
	l.listening = false
	l.mu.Unlock()
}

// Reset stops listening and drops undelivered utterances.
func (l *LineListener) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listening = false
	for {
		select {
		case <-l.out:
		default:
			return
		}
	}
}

// Listening implements Listener.
func (l *LineListener) Listening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listening
}

// Utterances implements Listener.
func (l *LineListener) Utterances() <-chan string { return l.out }

// Feed offers a line. It reports whether the line was accepted as an
// utterance: blank lines, lines outside a listening window and lines
// arriving while the buffer is full are refused.
func (l *LineListener) Feed(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.listening {
		return false
	}
	select {
	case l.out <- line:
		l.listening = false
		return true
	default:
		return false
	}
}

// #endregion line-listener
