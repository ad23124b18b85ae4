package mechanics

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

// CodeCracker collects one digit per answered question. The code is checked after the last question.
type CodeCracker struct {
	config    models.CodeCracker
	logger    *slog.Logger
	step      int
	collected []int
	pending   *int
	shaking   bool
	matched   bool
	cracked   bool
}

func NewCodeCracker(c models.CodeCracker, logger *slog.Logger) *CodeCracker {
	return &CodeCracker{config: c, logger: logger.With("source", "CodeCracker")}
}

func (c *CodeCracker) Type() models.InteractionType { return models.InteractionCodeCracker }

// Choose answers the current question with the option at index. A zero-value option is a wrong answer.
func (c *CodeCracker) Choose(index int) (Feedback, error) {
	if c.matched || c.pending != nil || c.step >= len(c.config.Questions) {
		return Feedback{}, nil
	}
	options := c.config.Questions[c.step].Options
	if index < 0 || index >= len(options) {
		return Feedback{}, errors.Wrap(ErrUnknownTarget, "choose code option", slog.Int("index", index))
	}
	value := options[index].Value
	if value == 0 {
		c.shaking = true
		return rejected(ShakeBoard, CodeShake), nil
	}
	c.pending = &value
	return accepted(audio.Success), nil
}

// Confirm appends the pending digit and moves to the next question.
func (c *CodeCracker) Confirm() Feedback {
	if c.pending == nil {
		return Feedback{}
	}
	c.collected = append(c.collected, *c.pending)
	c.pending = nil
	fb := accepted(audio.Click)
	if c.step < len(c.config.Questions)-1 {
		c.step++
		return fb
	}

	code := c.code()
	if code == c.config.Target() {
		c.matched = true
		fb.Cues = append(fb.Cues, audio.Victory)
		fb.Settle = CodeSettle
		return fb
	}
	c.logger.LogAttrs(context.Background(), slog.LevelWarn, "collected code does not match, starting over",
		slog.String("code", code), slog.String("target", c.config.Target()))
	c.collected = nil
	c.step = 0
	return fb
}

func (c *CodeCracker) code() string {
	var b strings.Builder
	for _, d := range c.collected {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

func (c *CodeCracker) IsComplete() bool { return c.matched }

func (c *CodeCracker) CanProceed() bool { return c.matched }

// Settle reveals the cracked code.
func (c *CodeCracker) Settle() {
	if c.matched {
		c.cracked = true
	}
}

func (c *CodeCracker) ClearShake(id string) {
	if id == ShakeBoard {
		c.shaking = false
	}
}

func (c *CodeCracker) View() View {
	cv := &CodeView{
		Step:      c.step,
		Questions: len(c.config.Questions),
		Collected: append([]int{}, c.collected...),
		Length:    len(c.config.Target()),
		Cracked:   c.cracked,
	}
	if c.step < len(c.config.Questions) {
		q := c.config.Questions[c.step]
		cv.Question = q.Question
		for _, o := range q.Options {
			cv.Options = append(cv.Options, o.Text)
		}
		if c.pending != nil {
			digit := *c.pending
			cv.Pending = &digit
			cv.Explanation = q.Explanation
		}
	}
	v := View{Type: c.Type(), Complete: c.matched, CanProceed: c.matched, Code: cv}
	if c.shaking {
		v.Shake = ShakeBoard
	}
	return v
}
