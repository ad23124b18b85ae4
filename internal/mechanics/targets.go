package mechanics

import (
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

type target struct {
	ItemView
	isTarget bool
}

// Targets backs both the balloons and the shield mini-games: every target item has to be clicked once,
// clicking anything else shakes it.
type Targets struct {
	kind      models.InteractionType
	hitCue    audio.Cue
	items     []target
	shake     string
	settled   bool
	announced bool
}

// NewBalloons pops the items that show a violation.
func NewBalloons(b models.Balloons) *Targets {
	items := make([]target, len(b.Items))
	for i, it := range b.Items {
		items[i] = target{ItemView: ItemView{ID: it.ID, Text: it.Text, Image: it.Image}, isTarget: it.IsCorrect}
	}
	return &Targets{kind: models.InteractionBalloons, hitCue: audio.Pop, items: items}
}

// NewShield protects the items in danger.
func NewShield(s models.Shield) *Targets {
	items := make([]target, len(s.Items))
	for i, it := range s.Items {
		items[i] = target{ItemView: ItemView{ID: it.ID, Text: it.Text, Image: it.Image}, isTarget: it.IsDanger}
	}
	return &Targets{kind: models.InteractionShield, hitCue: audio.Success, items: items}
}

func (t *Targets) Type() models.InteractionType { return t.kind }

func (t *Targets) Click(itemID string) (Feedback, error) {
	i := -1
	for j := range t.items {
		if t.items[j].ID == itemID {
			i = j
			break
		}
	}
	if i < 0 {
		return Feedback{}, errors.Wrap(ErrUnknownTarget, "click item", slog.String("itemID", itemID))
	}
	item := &t.items[i]
	if !item.isTarget {
		t.shake = itemID
		return rejected(itemID, TargetShake), nil
	}
	if item.Done {
		return Feedback{}, nil
	}
	item.Done = true
	fb := accepted(t.hitCue)
	if t.IsComplete() && !t.announced {
		t.announced = true
		fb.Cues = append(fb.Cues, audio.Success)
		fb.Settle = TargetSettle
	}
	return fb, nil
}

// IsComplete holds once no target is left. Content without targets is complete from the start.
func (t *Targets) IsComplete() bool {
	for _, it := range t.items {
		if it.isTarget && !it.Done {
			return false
		}
	}
	return true
}

// CanProceed waits for the completion to settle so that the last hit stays visible for a moment.
// A board without any target never settles and can be left right away.
func (t *Targets) CanProceed() bool {
	return t.IsComplete() && (t.settled || !t.announced)
}

func (t *Targets) Settle() {
	if t.IsComplete() {
		t.settled = true
	}
}

func (t *Targets) ClearShake(id string) {
	if t.shake == id {
		t.shake = ""
	}
}

func (t *Targets) View() View {
	items := make([]ItemView, len(t.items))
	for i, it := range t.items {
		items[i] = it.ItemView
	}
	return View{
		Type:       t.kind,
		Complete:   t.IsComplete(),
		CanProceed: t.CanProceed(),
		Shake:      t.shake,
		Items:      items,
	}
}
