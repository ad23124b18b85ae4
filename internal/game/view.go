package game

import (
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/WingsGames/Neve-Or/internal/scene"
)

type PinState string

const (
	PinLocked    PinState = "locked"
	PinCompleted PinState = "completed"
	PinOpen      PinState = "open"
)

// labelKeys are the interface strings a client needs to render any screen.
var labelKeys = []string{
	"start", "devMode", "backToMap", "stepBack", "locked", "completed", "open", "next", "challenge",
	"finishLevel", "finishGame", "moreInfo", "close", "understood", "mapTitle", "gameTitle", "loading",
	"closeDev", "correct", "correctAnswer", "tryAgain", "codeCracked", "codeLabel", "accessDenied",
	"question", "of", "mission", "socialMedia", "newsAlert", "likes", "chooseLocation", "visited",
	"clickToListen", "finishedListening", "proceedToDecision", "visitMore", "locations", "balloonsInst",
	"shieldInst", "yourChoice", "rotateDevice",
}

type IntroView struct {
	NodeID          string `json:"nodeId"`
	Description     string `json:"description"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
}

type Pin struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Type  models.NodeType `json:"type"`
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
	State PinState        `json:"state"`
	Icon  string          `json:"icon"`
}

type HubView struct {
	BackgroundImage string `json:"backgroundImage,omitempty"`
	Pins            []Pin  `json:"pins"`
}

// View is the immutable snapshot a client renders.
type View struct {
	Screen          Screen            `json:"screen"`
	Language        i18n.Language     `json:"language"`
	Direction       i18n.Direction    `json:"direction"`
	Languages       []i18n.Language   `json:"languages"`
	Labels          map[string]string `json:"labels"`
	Score           int               `json:"score"`
	DevMode         bool              `json:"devMode"`
	DevToolsEnabled bool              `json:"devToolsEnabled"`
	StorageFull     bool              `json:"storageFull"`
	StorageMessage  string            `json:"storageMessage,omitempty"`
	Intro           *IntroView        `json:"intro,omitempty"`
	Hub             *HubView          `json:"hub,omitempty"`
	Scene           *scene.View       `json:"scene,omitempty"`
	// Error names the node that could not be found.
	Error string `json:"error,omitempty"`
}

func pinState(n models.Node) (PinState, string) {
	switch {
	case n.IsCompleted:
		return PinCompleted, "✓"
	case n.IsLocked:
		return PinLocked, "🔒"
	case n.Type == models.NodeTypeQuiz:
		return PinOpen, "🔑"
	default:
		return PinOpen, "📍"
	}
}

// Pins lists the nodes shown on the map. Intro, hub configuration and nodes without coordinates are
// reached otherwise.
func Pins(nodes []models.Node) []Pin {
	var pins []Pin
	for _, n := range nodes {
		if !n.Type.Playable() || n.Coordinates == nil {
			continue
		}
		state, icon := pinState(n)
		pins = append(pins, Pin{
			ID: n.ID, Title: n.Title, Type: n.Type, X: n.Coordinates.X, Y: n.Coordinates.Y, State: state, Icon: icon,
		})
	}
	return pins
}

// View renders the current screen.
func (s *Session) View() View {
	v := View{
		Screen:          s.Screen(),
		Language:        s.language,
		Direction:       s.language.Direction(),
		Languages:       i18n.Supported(),
		Labels:          make(map[string]string, len(labelKeys)),
		Score:           s.state.Score,
		DevMode:         s.state.DevMode,
		DevToolsEnabled: s.cfg.DevTools,
		StorageFull:     s.saver.StorageFull(),
	}
	for _, key := range labelKeys {
		v.Labels[key] = s.translator.Translate(key, s.language)
	}
	if v.StorageFull {
		v.StorageMessage = s.translator.Translate("storageFull", s.language)
	}

	switch v.Screen {
	case ScreenIntro:
		intro, _ := s.state.Intro()
		if n, ok := s.state.Node(s.state.CurrentNodeID); ok {
			intro = n
		}
		v.Intro = &IntroView{
			NodeID:          intro.ID,
			Description:     intro.Data.Description,
			BackgroundImage: intro.Data.BackgroundImage,
		}
	case ScreenHub:
		hub := &HubView{Pins: Pins(s.state.Nodes)}
		if cfg, ok := s.state.Node(models.HubConfigNodeID); ok {
			hub.BackgroundImage = cfg.Data.BackgroundImage
		}
		v.Hub = hub
	case ScreenScene:
		sv := s.scene.View()
		v.Scene = &sv
	case ScreenError:
		v.Error = s.state.CurrentNodeID
		if v.Error == "" {
			v.Error = "intro"
		}
	}
	return v
}
