// Package mechanics implements the mini-games played in the interaction phase of a scene.
//
// Mechanics are plain state machines. They know nothing about time: an action returns a Feedback
// describing the cues to play and the delayed follow-ups (clearing a shake, settling completion)
// that the caller must schedule.
package mechanics

import (
	"log/slog"
	"time"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

var (
	ErrUnknownTarget = errors.NewSentinel("unknown interaction target")
	ErrWrongMechanic = errors.NewSentinel("action does not apply to this interaction")
)

const (
	AnswerSettle = 800 * time.Millisecond
	AnswerShake  = 800 * time.Millisecond
	TargetShake  = 500 * time.Millisecond
	TargetSettle = time.Second
	CodeShake    = 800 * time.Millisecond
	CodeSettle   = 500 * time.Millisecond
)

// ShakeBoard is the Shake value for feedback that shakes the whole interaction rather than one element.
const ShakeBoard = "*"

type Result int

const (
	// Ignored actions change nothing, e.g. clicking a balloon that already popped.
	Ignored Result = iota
	Accepted
	Rejected
)

type Feedback struct {
	Result Result
	Cues   []audio.Cue
	// Shake names the element to shake. The caller clears it with ClearShake after ShakeFor.
	Shake    string
	ShakeFor time.Duration
	// Settle is non-zero when the caller must call Settle after the delay.
	Settle time.Duration
}

func accepted(cues ...audio.Cue) Feedback {
	return Feedback{Result: Accepted, Cues: cues}
}

func rejected(shake string, d time.Duration) Feedback {
	return Feedback{Result: Rejected, Cues: []audio.Cue{audio.Error}, Shake: shake, ShakeFor: d}
}

// Mechanic is the state of one mini-game for a single scene entry.
type Mechanic interface {
	Type() models.InteractionType
	// IsComplete is the completion predicate of the mini-game.
	IsComplete() bool
	// CanProceed gates leaving the interaction phase.
	CanProceed() bool
	// Settle applies the completion scheduled by a Feedback.
	Settle()
	// ClearShake ends the shake started for id. A newer shake is left alone.
	ClearShake(id string)
	View() View
}

// New builds fresh mechanic state from node content. It returns nil for nodes without an interaction.
func New(content models.NodeContent, logger *slog.Logger) Mechanic {
	switch it := content.Interaction.(type) {
	case models.MultipleChoice:
		return NewMultipleChoice(it)
	case models.Balloons:
		return NewBalloons(it)
	case models.Shield:
		return NewShield(it)
	case models.SubLocations:
		return NewSubLocations(it, content.SubScenes)
	case models.CodeCracker:
		return NewCodeCracker(it, logger)
	default:
		return nil
	}
}

// View is the render snapshot of a mechanic. Only the fields of the active type are set.
type View struct {
	Type       models.InteractionType `json:"type"`
	Complete   bool                   `json:"complete"`
	CanProceed bool                   `json:"canProceed"`
	Shake      string                 `json:"shake,omitempty"`

	Question string       `json:"question,omitempty"`
	Answers  []AnswerView `json:"answers,omitempty"`

	Items []ItemView `json:"items,omitempty"`

	SubScenes      []SubSceneView   `json:"subScenes,omitempty"`
	ActiveSubScene *models.SubScene `json:"activeSubScene,omitempty"`
	Visited        int              `json:"visited,omitempty"`
	RequiredVisits int              `json:"requiredVisits,omitempty"`

	Code *CodeView `json:"code,omitempty"`
}

type AnswerView struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// ItemView is a balloon or a shield target. Done means popped or protected.
type ItemView struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
	Done  bool   `json:"done"`
}

type SubSceneView struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Icon            string `json:"icon,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	Visited         bool   `json:"visited"`
}

type CodeView struct {
	Step      int      `json:"step"`
	Questions int      `json:"questions"`
	Question  string   `json:"question,omitempty"`
	Options   []string `json:"options,omitempty"`
	Collected []int    `json:"collected"`
	Length    int      `json:"length"`
	// Pending is the digit waiting for confirmation, shown with its explanation.
	Pending     *int   `json:"pending,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Cracked     bool   `json:"cracked"`
}
