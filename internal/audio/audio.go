// Package audio defines the sound cues the engine emits. Playback is fire-and-forget: a player never
// reports failure back to the caller.
package audio

import (
	"context"
	"log/slog"
	"sync"
)

type Cue string

const (
	Click      Cue = "click"
	Success    Cue = "success"
	Error      Cue = "error"
	Pop        Cue = "pop"
	Hover      Cue = "hover"
	Victory    Cue = "victory"
	Transition Cue = "transition"
	Unlock     Cue = "unlock"
	Bubble     Cue = "bubble"
	Snap       Cue = "snap"
	ModalOpen  Cue = "modal_open"
)

type Player interface {
	Play(cue Cue)
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue) {}

// Recorder keeps played cues until they are drained. The web adapter drains it into every published
// snapshot so that the browser plays the cues.
type Recorder struct {
	mu   sync.Mutex
	cues []Cue
}

func (r *Recorder) Play(cue Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, cue)
}

// Drain returns the cues played since the last call and forgets them.
func (r *Recorder) Drain() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	cues := r.cues
	r.cues = nil
	return cues
}

// Logging writes every cue to the logger at debug level before passing it on.
type Logging struct {
	Next   Player
	Logger *slog.Logger
}

func (l Logging) Play(cue Cue) {
	l.Logger.LogAttrs(context.Background(), slog.LevelDebug, "play cue", slog.String("cue", string(cue)))
	if l.Next != nil {
		l.Next.Play(cue)
	}
}
