package game

import (
	"context"
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/mechanics"
	"github.com/WingsGames/Neve-Or/internal/scene"
)

var ErrUnknownCommand = errors.NewSentinel("unknown command")

type CommandType string

const (
	CommandStart            CommandType = "start"
	CommandSelectNode       CommandType = "selectNode"
	CommandBackToHub        CommandType = "backToHub"
	CommandBackToIntro      CommandType = "backToIntro"
	CommandBack             CommandType = "back"
	CommandSetLanguage      CommandType = "setLanguage"
	CommandKey              CommandType = "key"
	CommandDevMode          CommandType = "devMode"
	CommandTap              CommandType = "tap"
	CommandNext             CommandType = "next"
	CommandSelectAnswer     CommandType = "selectAnswer"
	CommandClickItem        CommandType = "clickItem"
	CommandOpenSubScene     CommandType = "openSubScene"
	CommandCloseSubScene    CommandType = "closeSubScene"
	CommandFinishListening  CommandType = "finishListening"
	CommandChooseCodeOption CommandType = "chooseCodeOption"
	CommandConfirmDigit     CommandType = "confirmDigit"
	CommandSelectOption     CommandType = "selectOption"
	CommandShowMoreInfo     CommandType = "showMoreInfo"
	CommandHideMoreInfo     CommandType = "hideMoreInfo"
	CommandContinue         CommandType = "continue"
)

// Command is a player action as sent by a client. ID carries the node, answer, item, sub-scene or option
// the action refers to.
type Command struct {
	Type     CommandType `json:"type"`
	ID       string      `json:"id,omitempty"`
	Index    int         `json:"index,omitempty"`
	Language string      `json:"language,omitempty"`
	On       bool        `json:"on,omitempty"`
	Key      *Key        `json:"key,omitempty"`
}

// Dispatch applies cmd to the session.
func (s *Session) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CommandStart:
		return s.Start(ctx)
	case CommandSelectNode:
		return s.SelectNode(ctx, cmd.ID)
	case CommandBackToHub:
		return s.BackToHub(ctx)
	case CommandBackToIntro:
		return s.BackToIntro(ctx)
	case CommandBack:
		return s.Back(ctx)
	case CommandSetLanguage:
		lang, ok := i18n.Parse(cmd.Language)
		if !ok {
			return errors.Wrap(ErrUnsupportedLanguage, "set language", slog.String("language", cmd.Language))
		}
		return s.SetLanguage(ctx, lang)
	case CommandKey:
		if cmd.Key != nil {
			s.HandleKey(ctx, *cmd.Key)
		}
		return nil
	case CommandDevMode:
		return s.SetDevMode(ctx, cmd.On)
	case CommandTap:
		return s.Scene(ctx, func(c *scene.Controller) error {
			c.Tap()
			return nil
		})
	case CommandNext:
		return s.Scene(ctx, (*scene.Controller).Next)
	case CommandSelectAnswer:
		return s.Scene(ctx, func(c *scene.Controller) error { return c.SelectAnswer(cmd.ID) })
	case CommandClickItem:
		return s.Scene(ctx, func(c *scene.Controller) error { return c.ClickItem(cmd.ID) })
	case CommandOpenSubScene:
		return s.Scene(ctx, func(c *scene.Controller) error { return c.OpenSubScene(cmd.ID) })
	case CommandCloseSubScene:
		return s.Scene(ctx, (*scene.Controller).CloseSubScene)
	case CommandFinishListening:
		return s.Scene(ctx, (*scene.Controller).FinishListening)
	case CommandChooseCodeOption:
		return s.Scene(ctx, func(c *scene.Controller) error { return c.ChooseCodeOption(cmd.Index) })
	case CommandConfirmDigit:
		return s.Scene(ctx, (*scene.Controller).ConfirmDigit)
	case CommandSelectOption:
		return s.Scene(ctx, func(c *scene.Controller) error { return c.SelectOption(cmd.ID) })
	case CommandShowMoreInfo:
		return s.Scene(ctx, (*scene.Controller).ShowMoreInfo)
	case CommandHideMoreInfo:
		return s.Scene(ctx, (*scene.Controller).HideMoreInfo)
	case CommandContinue:
		return s.Scene(ctx, (*scene.Controller).Continue)
	}
	return errors.Wrap(ErrUnknownCommand, "dispatch", slog.String("type", string(cmd.Type)))
}

var rejections = []error{
	ErrNodeLocked, ErrNodeHidden, ErrUnknownNode, ErrWrongScreen, ErrDevToolsDisabled, ErrUnsupportedLanguage,
	scene.ErrNoScene, scene.ErrSceneComplete, scene.ErrWrongPhase, scene.ErrNotRevealed,
	scene.ErrInteractionIncomplete, scene.ErrDecisionFinal, scene.ErrNoSelection, scene.ErrUnknownOption,
	scene.ErrNoMoreInfo, mechanics.ErrUnknownTarget, mechanics.ErrWrongMechanic,
}

// Rejected reports whether err is a command the game refused in its current state, as opposed to a
// failure of the system.
func Rejected(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
