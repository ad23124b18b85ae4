package scene

import (
	"github.com/WingsGames/Neve-Or/internal/mechanics"
	"github.com/WingsGames/Neve-Or/internal/models"
)

// View is an immutable render snapshot of the scene.
type View struct {
	NodeID          string          `json:"nodeId"`
	Title           string          `json:"title"`
	NodeType        models.NodeType `json:"nodeType"`
	Phase           Phase           `json:"phase"`
	BackgroundImage string          `json:"backgroundImage,omitempty"`
	// Loading hides the intro card until it is revealed.
	Loading        bool                   `json:"loading"`
	Description    string                 `json:"description,omitempty"`
	DigitalContent *models.DigitalContent `json:"digitalContent,omitempty"`
	Dialog         []DialogLine           `json:"dialog,omitempty"`
	Interaction    *mechanics.View        `json:"interaction,omitempty"`
	Decision       *DecisionView          `json:"decision,omitempty"`
	CanGoNext      bool                   `json:"canGoNext"`
	Complete       bool                   `json:"complete"`
}

type DialogLine struct {
	ID       string      `json:"id"`
	Speaker  string      `json:"speaker"`
	Text     string      `json:"text"`
	Mood     models.Mood `json:"mood,omitempty"`
	IsPlayer bool        `json:"isPlayer,omitempty"`
	Avatar   string      `json:"avatar,omitempty"`
}

type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type DecisionView struct {
	Question string       `json:"question"`
	Trivial  bool         `json:"trivial"`
	Options  []OptionView `json:"options,omitempty"`
	Selected string       `json:"selected,omitempty"`
	// Feedback is set once it should be shown: after the choice, or right away for a trivial decision.
	Feedback        string `json:"feedback,omitempty"`
	MoreInfoTitle   string `json:"moreInfoTitle,omitempty"`
	MoreInfoContent string `json:"moreInfoContent,omitempty"`
	ShowMoreInfo    bool   `json:"showMoreInfo"`
	CanContinue     bool   `json:"canContinue"`
}

// View returns the snapshot of the current scene. The zero View is returned when no scene is active.
func (c *Controller) View() View {
	if c.node == nil {
		return View{}
	}
	data := c.node.Data
	v := View{
		NodeID:          c.node.ID,
		Title:           c.node.Title,
		NodeType:        c.node.Type,
		Phase:           c.phase,
		BackgroundImage: data.BackgroundImage,
		Complete:        c.complete,
	}
	// The intro card stays empty until revealed.
	hidden := c.phase == PhaseIntro && !c.revealed
	if data.DigitalContent != nil && !hidden && (c.phase == PhaseIntro || c.phase == PhaseDialog) {
		dc := *data.DigitalContent
		v.DigitalContent = &dc
	}

	switch c.phase {
	case PhaseIntro:
		v.Loading = hidden
		if !hidden {
			v.Description = data.Description
		}
		v.CanGoNext = c.revealed
	case PhaseDialog:
		v.Dialog = make([]DialogLine, len(data.Dialog))
		for i, m := range data.Dialog {
			v.Dialog[i] = DialogLine{
				ID:       m.ID,
				Speaker:  m.Speaker,
				Text:     m.Text,
				Mood:     m.Mood,
				IsPlayer: m.IsPlayer,
				Avatar:   data.CharacterImages[m.Speaker],
			}
		}
		v.CanGoNext = true
	case PhaseInteraction:
		mv := c.mechanic.View()
		v.Interaction = &mv
		v.CanGoNext = c.mechanic.CanProceed()
	case PhaseDecision:
		v.Decision = decisionView(data.DecisionQuestion, data.Options, c.primary,
			data.MoreInfoTitle, data.MoreInfoContent)
	case PhaseSecondaryDecision:
		v.Decision = decisionView(data.SecondaryDecisionQuestion, data.SecondaryOptions, c.second,
			data.SecondaryMoreInfoTitle, data.SecondaryMoreInfoContent)
	}
	if c.complete {
		v.CanGoNext = false
	}
	return v
}

func decisionView(
	question string,
	options []models.DecisionOption,
	d decision,
	moreInfoTitle string,
	moreInfoContent string,
) *DecisionView {
	dv := &DecisionView{
		Question:        question,
		Trivial:         trivial(options),
		Selected:        d.selected,
		MoreInfoTitle:   moreInfoTitle,
		MoreInfoContent: moreInfoContent,
		ShowMoreInfo:    d.showMoreInfo,
	}
	switch {
	case dv.Trivial:
		if len(options) == 1 {
			dv.Feedback = options[0].Feedback
		}
		dv.CanContinue = true
	default:
		dv.Options = make([]OptionView, len(options))
		for i, o := range options {
			dv.Options[i] = OptionView{ID: o.ID, Text: o.Text}
			if o.ID == d.selected {
				dv.Feedback = o.Feedback
			}
		}
		dv.CanContinue = d.selected != ""
	}
	return dv
}
