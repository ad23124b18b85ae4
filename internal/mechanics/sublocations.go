package mechanics

import (
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/audio"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

// SubLocations asks the player to listen to a number of the node's sub-scenes before deciding.
type SubLocations struct {
	required  int
	subScenes []models.SubScene
	visited   map[string]bool
	active    *models.SubScene
}

func NewSubLocations(s models.SubLocations, subScenes []models.SubScene) *SubLocations {
	return &SubLocations{
		required:  s.Required(),
		subScenes: subScenes,
		visited:   map[string]bool{},
	}
}

func (s *SubLocations) Type() models.InteractionType { return models.InteractionSubLocations }

// Open shows the sub-scene dialog. Opening is ignored while another sub-scene is open.
func (s *SubLocations) Open(id string) (Feedback, error) {
	if s.active != nil {
		return Feedback{}, nil
	}
	for i := range s.subScenes {
		if s.subScenes[i].ID == id {
			sub := s.subScenes[i]
			s.active = &sub
			return accepted(audio.Click), nil
		}
	}
	return Feedback{}, errors.Wrap(ErrUnknownTarget, "open sub-scene", slog.String("subSceneID", id))
}

// Close leaves the open sub-scene without counting it as visited.
func (s *SubLocations) Close() Feedback {
	if s.active == nil {
		return Feedback{}
	}
	s.active = nil
	return accepted()
}

// FinishListening marks the open sub-scene visited and closes it. Visiting twice counts once.
func (s *SubLocations) FinishListening() Feedback {
	if s.active == nil {
		return Feedback{}
	}
	s.visited[s.active.ID] = true
	s.active = nil
	return accepted(audio.Click)
}

// IsOpen reports whether a sub-scene dialog is showing.
func (s *SubLocations) IsOpen() bool { return s.active != nil }

func (s *SubLocations) Visited() int { return len(s.visited) }

func (s *SubLocations) IsComplete() bool { return len(s.visited) >= s.required }

func (s *SubLocations) CanProceed() bool { return s.IsComplete() }

func (s *SubLocations) Settle() {}

func (s *SubLocations) ClearShake(string) {}

func (s *SubLocations) View() View {
	subs := make([]SubSceneView, len(s.subScenes))
	for i, sub := range s.subScenes {
		subs[i] = SubSceneView{
			ID:              sub.ID,
			Title:           sub.Title,
			Icon:            sub.Icon,
			BackgroundImage: sub.BackgroundImage,
			Visited:         s.visited[sub.ID],
		}
	}
	v := View{
		Type:           s.Type(),
		Complete:       s.IsComplete(),
		CanProceed:     s.IsComplete(),
		SubScenes:      subs,
		Visited:        len(s.visited),
		RequiredVisits: s.required,
	}
	if s.active != nil {
		active := *s.active
		v.ActiveSubScene = &active
	}
	return v
}
