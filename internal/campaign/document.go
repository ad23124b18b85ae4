package campaign

import (
	"encoding/json"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

var ErrCorruptSave = errors.NewSentinel("corrupt save")

// Document is the persisted form of a GameState. Text content is never saved so that content fixes
// reach returning players.
type Document struct {
	Nodes []NodeRecord `json:"nodes"`
	Score int          `json:"score"`
}

type NodeRecord struct {
	ID          string     `json:"id"`
	IsLocked    bool       `json:"isLocked"`
	IsCompleted bool       `json:"isCompleted"`
	Data        DataRecord `json:"data"`
}

type DataRecord struct {
	BackgroundImage *string           `json:"backgroundImage"`
	CharacterImages map[string]string `json:"characterImages"`
	SubScenes       []SubSceneRecord  `json:"subScenes"`
}

type SubSceneRecord struct {
	ID              string  `json:"id"`
	BackgroundImage *string `json:"backgroundImage"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Snapshot reduces the state to the persisted document.
func Snapshot(state models.GameState) Document {
	doc := Document{Nodes: make([]NodeRecord, len(state.Nodes)), Score: state.Score}
	for i, n := range state.Nodes {
		rec := NodeRecord{
			ID:          n.ID,
			IsLocked:    n.IsLocked,
			IsCompleted: n.IsCompleted,
			Data: DataRecord{
				BackgroundImage: optional(n.Data.BackgroundImage),
				CharacterImages: n.Data.CharacterImages,
			},
		}
		if n.Data.SubScenes != nil {
			rec.Data.SubScenes = make([]SubSceneRecord, len(n.Data.SubScenes))
			for j, s := range n.Data.SubScenes {
				rec.Data.SubScenes[j] = SubSceneRecord{ID: s.ID, BackgroundImage: optional(s.BackgroundImage)}
			}
		}
		doc.Nodes[i] = rec
	}
	return doc
}

// savedNode is a node record as far as it could be read. Nil and empty fields keep the fresh value.
type savedNode struct {
	isLocked       *bool
	isCompleted    *bool
	background     string
	characters     map[string]string
	subBackgrounds map[string]string
}

type savedState struct {
	nodes map[string]savedNode
	score *int
}

// decode reads a save blob field by field. Only a blob that is not an object with a nodes array is
// rejected; every other malformed field is skipped.
func decode(blob string) (savedState, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &root); err != nil {
		return savedState{}, errors.Wrap(ErrCorruptSave, "parse save")
	}
	var rawNodes []json.RawMessage
	if err := json.Unmarshal(root["nodes"], &rawNodes); err != nil || rawNodes == nil {
		return savedState{}, errors.Wrap(ErrCorruptSave, "save without nodes array")
	}

	state := savedState{nodes: make(map[string]savedNode, len(rawNodes))}
	var score int
	if root["score"] != nil && json.Unmarshal(root["score"], &score) == nil {
		state.score = &score
	}
	for _, raw := range rawNodes {
		var fields map[string]json.RawMessage
		if json.Unmarshal(raw, &fields) != nil {
			continue
		}
		var id string
		if json.Unmarshal(fields["id"], &id) != nil || id == "" {
			continue
		}
		n := savedNode{
			isLocked:    decodeBool(fields["isLocked"]),
			isCompleted: decodeBool(fields["isCompleted"]),
		}
		var data map[string]json.RawMessage
		if json.Unmarshal(fields["data"], &data) == nil {
			n.background = decodeString(data["backgroundImage"])
			n.characters = decodeStringMap(data["characterImages"])
			n.subBackgrounds = decodeSubScenes(data["subScenes"])
		}
		state.nodes[id] = n
	}
	return state, nil
}

func decodeBool(raw json.RawMessage) *bool {
	var b bool
	if raw == nil || json.Unmarshal(raw, &b) != nil {
		return nil
	}
	return &b
}

func decodeString(raw json.RawMessage) string {
	var s string
	if raw == nil || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func decodeStringMap(raw json.RawMessage) map[string]string {
	var fields map[string]json.RawMessage
	if raw == nil || json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	out := map[string]string{}
	for k, v := range fields {
		if s := decodeString(v); s != "" {
			out[k] = s
		}
	}
	return out
}

func decodeSubScenes(raw json.RawMessage) map[string]string {
	var list []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &list) != nil {
		return nil
	}
	out := map[string]string{}
	for _, item := range list {
		var fields map[string]json.RawMessage
		if json.Unmarshal(item, &fields) != nil {
			continue
		}
		id := decodeString(fields["id"])
		if bg := decodeString(fields["backgroundImage"]); id != "" && bg != "" {
			out[id] = bg
		}
	}
	return out
}

// merge applies saved progress and assets to fresh content.
func merge(fresh []models.Node, saved map[string]savedNode) []models.Node {
	out := models.CloneNodes(fresh)
	for i := range out {
		s, ok := saved[out[i].ID]
		if !ok {
			continue
		}
		n := &out[i]
		if s.isLocked != nil {
			n.IsLocked = *s.isLocked
		}
		if s.isCompleted != nil {
			n.IsCompleted = *s.isCompleted
		}
		if s.background != "" {
			n.Data.BackgroundImage = s.background
		}
		if len(s.characters) > 0 {
			if n.Data.CharacterImages == nil {
				n.Data.CharacterImages = map[string]string{}
			}
			for speaker, url := range s.characters {
				n.Data.CharacterImages[speaker] = url
			}
		}
		for j := range n.Data.SubScenes {
			if bg := s.subBackgrounds[n.Data.SubScenes[j].ID]; bg != "" {
				n.Data.SubScenes[j].BackgroundImage = bg
			}
		}
	}
	return out
}

// Rebase moves the progress and assets of current onto fresh content, e.g. after a language switch.
func Rebase(fresh []models.Node, current []models.Node) []models.Node {
	saved := make(map[string]savedNode, len(current))
	for _, n := range current {
		locked, completed := n.IsLocked, n.IsCompleted
		s := savedNode{
			isLocked:       &locked,
			isCompleted:    &completed,
			background:     n.Data.BackgroundImage,
			characters:     n.Data.CharacterImages,
			subBackgrounds: map[string]string{},
		}
		for _, sub := range n.Data.SubScenes {
			s.subBackgrounds[sub.ID] = sub.BackgroundImage
		}
		saved[n.ID] = s
	}
	return merge(fresh, saved)
}
