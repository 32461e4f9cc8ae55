package listen

import "testing"

func TestLineListener_FeedRequiresListening(t *testing.T) {
	l := NewLineListener()
	if !l.Supported() {
		t.Fatal("line listener is always supported")
	}
	if l.Feed("hello") {
		t.Fatal("feed outside a listening window must be refused")
	}

	l.Start()
	if !l.Listening() {
		t.Fatal("expected listening after Start")
	}
	if l.Feed("   ") {
		t.Error("blank line must be refused")
	}
	if !l.Feed("  who is this?  ") {
		t.Fatal("expected utterance accepted")
	}
	if l.Listening() {
		t.Error("a finalized utterance closes the listening window")
	}
	if got := <-l.Utterances(); got != "who is this?" {
		t.Errorf("expected trimmed utterance, got %q", got)
	}
}

func TestLineListener_StopAndReset(t *testing.T) {
	l := NewLineListener()
	l.Start()
	l.Stop()
	if l.Listening() || l.Feed("x") {
		t.Fatal("stopped listener must not accept lines")
	}

	l.Start()
	l.Feed("queued")
	l.Start()
	l.Reset()
	if l.Listening() {
		t.Error("Reset must stop listening")
	}
	select {
	case u := <-l.Utterances():
		t.Errorf("Reset must drop pending utterances, got %q", u)
	default:
	}
}

func TestLineListener_FullBuffer(t *testing.T) {
	l := NewLineListener()
	for i := 0; i < cap(l.out); i++ {
		l.Start()
		if !l.Feed("u") {
			t.Fatalf("feed %d refused", i)
		}
	}
	l.Start()
	if l.Feed("overflow") {
		t.Error("feed into a full buffer must be refused")
	}
	if !l.Listening() {
		t.Error("a refused line must not close the window")
	}
}
