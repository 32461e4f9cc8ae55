package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// #region player

// Player plays an encoded audio clip to completion.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// CommandPlayer pipes audio into an external player process, for example
// "ffplay -nodisp -autoexit -loglevel quiet -".
type CommandPlayer struct {
	Name string
	Args []string
}

// Play implements Player.
func (p CommandPlayer) Play(ctx context.Context, audio []byte) error {
	cmd := exec.CommandContext(ctx, p.Name, p.Args...)
	cmd.Stdin = bytes.NewReader(audio)
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.Name, err, stderr.String())
	}
	return nil
}

// DiscardPlayer accepts audio and plays nothing.
type DiscardPlayer struct{}

// Play implements Player.
func (DiscardPlayer) Play(context.Context, []byte) error { return nil }

// #endregion player
