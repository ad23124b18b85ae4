package scene

import (
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/mechanics"
	"github.com/WingsGames/Neve-Or/internal/models"
)

// interaction returns the running mechanic as M when the scene is in the interaction phase.
func interaction[M mechanics.Mechanic](c *Controller, command string) (M, error) {
	var zero M
	if err := c.check(); err != nil {
		return zero, err
	}
	if c.phase != PhaseInteraction {
		return zero, c.wrongPhase(command)
	}
	m, ok := c.mechanic.(M)
	if !ok {
		return zero, errors.Wrap(mechanics.ErrWrongMechanic, command,
			slog.String("interaction", string(c.node.Data.InteractionType())))
	}
	return m, nil
}

func (c *Controller) apply(fb mechanics.Feedback) {
	c.play(fb.Cues...)
	if fb.Shake != "" {
		shake, m := fb.Shake, c.mechanic
		c.schedule(fb.ShakeFor, func() { m.ClearShake(shake) })
	}
	if fb.Settle > 0 {
		m := c.mechanic
		c.schedule(fb.Settle, m.Settle)
	}
}

func (c *Controller) SelectAnswer(answerID string) error {
	m, err := interaction[*mechanics.MultipleChoice](c, "select answer")
	if err != nil {
		return err
	}
	fb, err := m.Select(answerID)
	if err != nil {
		return errors.Wrap(err, "select answer")
	}
	c.apply(fb)
	return nil
}

// ClickItem pops a balloon or shields an item.
func (c *Controller) ClickItem(itemID string) error {
	m, err := interaction[*mechanics.Targets](c, "click item")
	if err != nil {
		return err
	}
	fb, err := m.Click(itemID)
	if err != nil {
		return errors.Wrap(err, "click item")
	}
	c.apply(fb)
	return nil
}

func (c *Controller) OpenSubScene(id string) error {
	m, err := interaction[*mechanics.SubLocations](c, "open sub-scene")
	if err != nil {
		return err
	}
	fb, err := m.Open(id)
	if err != nil {
		return errors.Wrap(err, "open sub-scene")
	}
	c.apply(fb)
	return nil
}

func (c *Controller) CloseSubScene() error {
	m, err := interaction[*mechanics.SubLocations](c, "close sub-scene")
	if err != nil {
		return err
	}
	c.apply(m.Close())
	return nil
}

func (c *Controller) FinishListening() error {
	m, err := interaction[*mechanics.SubLocations](c, "finish listening")
	if err != nil {
		return err
	}
	c.apply(m.FinishListening())
	return nil
}

func (c *Controller) ChooseCodeOption(index int) error {
	m, err := interaction[*mechanics.CodeCracker](c, "choose code option")
	if err != nil {
		return err
	}
	fb, err := m.Choose(index)
	if err != nil {
		return errors.Wrap(err, "choose code option")
	}
	c.apply(fb)
	return nil
}

func (c *Controller) ConfirmDigit() error {
	m, err := interaction[*mechanics.CodeCracker](c, "confirm digit")
	if err != nil {
		return err
	}
	c.apply(m.Confirm())
	return nil
}

// activeDecision returns the decision state and options of the current decision phase.
func (c *Controller) activeDecision(command string) (*decision, []models.DecisionOption, error) {
	if err := c.check(); err != nil {
		return nil, nil, err
	}
	switch c.phase {
	case PhaseDecision:
		return &c.primary, c.node.Data.Options, nil
	case PhaseSecondaryDecision:
		return &c.second, c.node.Data.SecondaryOptions, nil
	default:
		return nil, nil, c.wrongPhase(command)
	}
}

// trivial decisions have at most one option and are shown as a plain continue.
func trivial(options []models.DecisionOption) bool {
	return len(options) <= 1
}

// SelectOption records the player's choice. The first choice is final.
func (c *Controller) SelectOption(optionID string) error {
	d, options, err := c.activeDecision("select option")
	if err != nil {
		return err
	}
	if trivial(options) {
		return c.wrongPhase("select option")
	}
	if d.selected != "" {
		return ErrDecisionFinal
	}
	for _, o := range options {
		if o.ID == optionID {
			d.selected = optionID
			c.play(audio.Click)
			return nil
		}
	}
	return errors.Wrap(ErrUnknownOption, "select option", slog.String("optionID", optionID))
}

// ShowMoreInfo opens the more info overlay once the feedback is showing.
func (c *Controller) ShowMoreInfo() error {
	d, options, err := c.activeDecision("show more info")
	if err != nil {
		return err
	}
	if !trivial(options) && d.selected == "" {
		return ErrNoMoreInfo
	}
	d.showMoreInfo = true
	c.play(audio.Pop)
	return nil
}

func (c *Controller) HideMoreInfo() error {
	d, _, err := c.activeDecision("hide more info")
	if err != nil {
		return err
	}
	if d.showMoreInfo {
		d.showMoreInfo = false
		c.play(audio.Click)
	}
	return nil
}

// Continue leaves a decision: to the secondary decision when there is one, otherwise out of the scene.
func (c *Controller) Continue() error {
	d, options, err := c.activeDecision("continue")
	if err != nil {
		return err
	}
	if !trivial(options) && d.selected == "" {
		return ErrNoSelection
	}
	d.showMoreInfo = false
	if c.phase == PhaseDecision && c.node.Data.HasSecondaryDecision() {
		c.setPhase(PhaseSecondaryDecision)
		return nil
	}
	c.finish()
	return nil
}

func (c *Controller) finish() {
	c.complete = true
	c.cancelScheduled()
	c.logger.Debug("complete scene", slog.String("nodeID", c.node.ID))
	if c.onComplete != nil {
		c.onComplete(c.node.ID)
	}
}
