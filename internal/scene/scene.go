// Package scene drives the playback of a single node: intro, dialog, interaction and up to two decisions.
package scene

import (
	"context"
	"log/slog"
	"time"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/eventloop"
	"github.com/WingsGames/Neve-Or/internal/mechanics"
	"github.com/WingsGames/Neve-Or/internal/models"
)

type Phase string

const (
	PhaseIntro             Phase = "INTRO"
	PhaseDialog            Phase = "DIALOG"
	PhaseInteraction       Phase = "INTERACTION"
	PhaseDecision          Phase = "DECISION"
	PhaseSecondaryDecision Phase = "DECISION_PHASE_2"
)

var (
	ErrNoScene               = errors.NewSentinel("no scene entered")
	ErrSceneComplete         = errors.NewSentinel("scene already complete")
	ErrWrongPhase            = errors.NewSentinel("command not available in this phase")
	ErrNotRevealed           = errors.NewSentinel("intro still loading")
	ErrInteractionIncomplete = errors.NewSentinel("interaction not complete")
	ErrDecisionFinal         = errors.NewSentinel("decision already made")
	ErrNoSelection           = errors.NewSentinel("no option selected")
	ErrUnknownOption         = errors.NewSentinel("unknown decision option")
	ErrNoMoreInfo            = errors.NewSentinel("more info not available")
)

type Timings struct {
	// IntroReveal is how long the intro card stays hidden behind the loading screen.
	IntroReveal time.Duration
}

func DefaultTimings() Timings {
	return Timings{IntroReveal: 4 * time.Second}
}

type decision struct {
	selected     string
	showMoreInfo bool
}

// Controller is the phase state machine of the scene being played.
//
// Controller is not safe for concurrent use. Commands and scheduled callbacks must run on the same
// goroutine, which the eventloop package provides.
type Controller struct {
	scheduler eventloop.Scheduler
	player    audio.Player
	logger    *slog.Logger
	timings   Timings

	onComplete func(nodeID string)
	onChange   func()

	// epoch increases on every Enter. Scheduled callbacks of an older epoch are dropped.
	epoch    uint64
	// live holds the tokens of callbacks that have neither run nor been cancelled.
	live     map[eventloop.Token]struct{}
	reveal   eventloop.Token
	node     *models.Node
	phase    Phase
	revealed bool
	mechanic mechanics.Mechanic
	primary  decision
	second   decision
	complete bool
}

func New(scheduler eventloop.Scheduler, player audio.Player, logger *slog.Logger, timings Timings) *Controller {
	return &Controller{
		scheduler: scheduler,
		player:    player,
		logger:    logger.With("source", "SceneController"),
		timings:   timings,
		live:      map[eventloop.Token]struct{}{},
	}
}

// OnComplete registers the callback invoked once per entry when the scene finishes.
func (c *Controller) OnComplete(fn func(nodeID string)) {
	c.onComplete = fn
}

// OnChange registers a callback invoked after a scheduled event changed the scene.
func (c *Controller) OnChange(fn func()) {
	c.onChange = fn
}

// Enter starts node from its intro with every piece of scene state reset.
func (c *Controller) Enter(node models.Node) {
	c.cancelScheduled()
	c.epoch++
	n := node.Clone()
	c.node = &n
	c.phase = PhaseIntro
	c.revealed = false
	c.mechanic = mechanics.New(n.Data, c.logger)
	c.primary = decision{}
	c.second = decision{}
	c.complete = false

	if c.timings.IntroReveal <= 0 {
		c.revealed = true
	} else {
		c.reveal = c.schedule(c.timings.IntroReveal, func() { c.revealed = true })
	}
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "enter scene",
		slog.String("nodeID", n.ID), slog.String("interaction", string(n.Data.InteractionType())))
}

// Leave drops the current scene. Pending scheduled events become no-ops.
func (c *Controller) Leave() {
	c.cancelScheduled()
	c.epoch++
	c.node = nil
	c.mechanic = nil
}

// Active reports whether a scene is being played.
func (c *Controller) Active() bool { return c.node != nil }

// NodeID returns the id of the scene being played or "".
func (c *Controller) NodeID() string {
	if c.node == nil {
		return ""
	}
	return c.node.ID
}

func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) schedule(d time.Duration, fn func()) eventloop.Token {
	epoch := c.epoch
	var token eventloop.Token
	token = c.scheduler.After(d, func() {
		delete(c.live, token)
		if c.epoch != epoch {
			return
		}
		fn()
		if c.onChange != nil {
			c.onChange()
		}
	})
	c.live[token] = struct{}{}
	return token
}

func (c *Controller) unschedule(token eventloop.Token) {
	c.scheduler.Cancel(token)
	delete(c.live, token)
}

func (c *Controller) cancelScheduled() {
	for token := range c.live {
		c.unschedule(token)
	}
}

// Scheduled is the number of timer callbacks still waiting to run.
func (c *Controller) Scheduled() int { return len(c.live) }

func (c *Controller) play(cues ...audio.Cue) {
	for _, cue := range cues {
		c.player.Play(cue)
	}
}

func (c *Controller) check() error {
	if c.node == nil {
		return ErrNoScene
	}
	if c.complete {
		return ErrSceneComplete
	}
	return nil
}

func (c *Controller) wrongPhase(command string) error {
	return errors.Wrap(ErrWrongPhase, command, slog.String("phase", string(c.phase)))
}

// Tap reveals the intro card early.
func (c *Controller) Tap() {
	if c.node == nil || c.phase != PhaseIntro || c.revealed {
		return
	}
	c.revealed = true
	c.unschedule(c.reveal)
}

// afterIntro is the first phase following INTRO, skipping the empty ones.
func (c *Controller) afterIntro() Phase {
	if len(c.node.Data.Dialog) > 0 {
		return PhaseDialog
	}
	return c.afterDialog()
}

func (c *Controller) afterDialog() Phase {
	if c.mechanic != nil {
		return PhaseInteraction
	}
	return PhaseDecision
}

// beforeDecision is the phase Back returns to from DECISION.
func (c *Controller) beforeDecision() Phase {
	if c.mechanic != nil {
		return PhaseInteraction
	}
	if len(c.node.Data.Dialog) > 0 {
		return PhaseDialog
	}
	return PhaseIntro
}

func (c *Controller) setPhase(p Phase) {
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "change phase",
		slog.String("nodeID", c.node.ID), slog.String("from", string(c.phase)), slog.String("to", string(p)))
	c.phase = p
}

// Next advances from INTRO, DIALOG or a completed INTERACTION.
func (c *Controller) Next() error {
	if err := c.check(); err != nil {
		return err
	}
	switch c.phase {
	case PhaseIntro:
		if !c.revealed {
			return ErrNotRevealed
		}
		c.setPhase(c.afterIntro())
	case PhaseDialog:
		c.setPhase(c.afterDialog())
	case PhaseInteraction:
		if !c.mechanic.CanProceed() {
			return ErrInteractionIncomplete
		}
		if sub, ok := c.mechanic.(*mechanics.SubLocations); ok && sub.IsOpen() {
			sub.Close()
		}
		c.setPhase(PhaseDecision)
	case PhaseDecision, PhaseSecondaryDecision:
		return c.wrongPhase("next")
	}
	return nil
}

// Back steps one phase back. It returns false on the intro, where leaving the scene is up to the caller.
func (c *Controller) Back() bool {
	if c.node == nil || c.complete {
		return false
	}
	if sub, ok := c.mechanic.(*mechanics.SubLocations); ok && c.phase == PhaseInteraction && sub.IsOpen() {
		sub.Close()
		return true
	}
	switch c.phase {
	case PhaseIntro:
		return false
	case PhaseDialog, PhaseInteraction:
		c.setPhase(PhaseIntro)
	case PhaseDecision:
		c.primary.showMoreInfo = false
		c.setPhase(c.beforeDecision())
	case PhaseSecondaryDecision:
		c.second.showMoreInfo = false
		c.setPhase(PhaseDecision)
	}
	return true
}
