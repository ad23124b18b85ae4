package models

import "maps"

type NodeType string

const (
	NodeTypeIntro    NodeType = "INTRO"
	NodeTypeHub      NodeType = "HUB"
	NodeTypeScenario NodeType = "SCENARIO"
	NodeTypeQuiz     NodeType = "QUIZ"
)

// Playable reports whether nodes of this type take part in campaign progress.
func (t NodeType) Playable() bool {
	return t == NodeTypeScenario || t == NodeTypeQuiz
}

type Mood string

const (
	MoodNeutral   Mood = "neutral"
	MoodAngry     Mood = "angry"
	MoodHappy     Mood = "happy"
	MoodConcerned Mood = "concerned"
)

type DigitalContentType string

const (
	DigitalContentPost    DigitalContentType = "POST"
	DigitalContentArticle DigitalContentType = "ARTICLE"
)

type Coordinates struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type ChatMessage struct {
	ID       string `json:"id" yaml:"id"`
	Speaker  string `json:"speaker" yaml:"speaker"`
	Text     string `json:"text" yaml:"text"`
	Mood     Mood   `json:"mood,omitempty" yaml:"mood,omitempty"`
	IsPlayer bool   `json:"isPlayer,omitempty" yaml:"isPlayer,omitempty"`
}

type SubScene struct {
	ID              string        `json:"id" yaml:"id"`
	Title           string        `json:"title" yaml:"title"`
	Icon            string        `json:"icon,omitempty" yaml:"icon,omitempty"`
	BackgroundImage string        `json:"backgroundImage,omitempty" yaml:"backgroundImage,omitempty"`
	Dialog          []ChatMessage `json:"dialog" yaml:"dialog"`
}

type DecisionOption struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Feedback string `json:"feedback" yaml:"feedback"`
}

type DigitalContent struct {
	Type    DigitalContentType `json:"type" yaml:"type"`
	Title   string             `json:"title,omitempty" yaml:"title,omitempty"`
	Author  string             `json:"author" yaml:"author"`
	Content string             `json:"content" yaml:"content"`
	Likes   int                `json:"likes,omitempty" yaml:"likes,omitempty"`
}

// NodeContent is the playable payload of a node.
//
// Interaction is nil for nodes without a mini-game.
type NodeContent struct {
	Description               string            `json:"description" yaml:"description"`
	BackgroundImage           string            `json:"backgroundImage,omitempty" yaml:"backgroundImage,omitempty"`
	Dialog                    []ChatMessage     `json:"dialog" yaml:"dialog"`
	Interaction               Interaction       `json:"-" yaml:"-"`
	SubScenes                 []SubScene        `json:"subScenes,omitempty" yaml:"subScenes,omitempty"`
	DecisionQuestion          string            `json:"decisionQuestion" yaml:"decisionQuestion"`
	Options                   []DecisionOption  `json:"options" yaml:"options"`
	SecondaryDecisionQuestion string            `json:"secondaryDecisionQuestion,omitempty" yaml:"secondaryDecisionQuestion,omitempty"`
	SecondaryOptions          []DecisionOption  `json:"secondaryOptions,omitempty" yaml:"secondaryOptions,omitempty"`
	MoreInfoTitle             string            `json:"moreInfoTitle,omitempty" yaml:"moreInfoTitle,omitempty"`
	MoreInfoContent           string            `json:"moreInfoContent,omitempty" yaml:"moreInfoContent,omitempty"`
	SecondaryMoreInfoTitle    string            `json:"secondaryMoreInfoTitle,omitempty" yaml:"secondaryMoreInfoTitle,omitempty"`
	SecondaryMoreInfoContent  string            `json:"secondaryMoreInfoContent,omitempty" yaml:"secondaryMoreInfoContent,omitempty"`
	CharacterImages           map[string]string `json:"characterImages,omitempty" yaml:"characterImages,omitempty"`
	DigitalContent            *DigitalContent   `json:"digitalContent,omitempty" yaml:"digitalContent,omitempty"`
}

// HasSecondaryDecision reports whether the node defines a second decision round.
func (c NodeContent) HasSecondaryDecision() bool {
	return c.SecondaryDecisionQuestion != "" && len(c.SecondaryOptions) > 0
}

// InteractionType returns the configured mechanic, InteractionNone when there is no interaction.
func (c NodeContent) InteractionType() InteractionType {
	if c.Interaction == nil {
		return InteractionNone
	}
	return c.Interaction.Type()
}

// SubScene looks up a sub-scene by id.
func (c NodeContent) SubScene(id string) (SubScene, bool) {
	for _, s := range c.SubScenes {
		if s.ID == id {
			return s, true
		}
	}
	return SubScene{}, false
}

type Node struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Type        NodeType     `json:"type" yaml:"type"`
	IsLocked    bool         `json:"isLocked" yaml:"isLocked"`
	IsCompleted bool         `json:"isCompleted" yaml:"isCompleted"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	// JumpTo overrides the hub as the destination after completing this node.
	JumpTo string      `json:"jumpTo,omitempty" yaml:"jumpTo,omitempty"`
	Data   NodeContent `json:"data" yaml:"data"`
}

// Clone returns a deep copy so that mutations never leak into shared content.
func (n Node) Clone() Node {
	out := n
	if n.Coordinates != nil {
		c := *n.Coordinates
		out.Coordinates = &c
	}
	out.Data = n.Data.Clone()
	return out
}

func (c NodeContent) Clone() NodeContent {
	out := c
	out.Dialog = cloneDialog(c.Dialog)
	if c.SubScenes != nil {
		out.SubScenes = make([]SubScene, len(c.SubScenes))
		for i, s := range c.SubScenes {
			s.Dialog = cloneDialog(s.Dialog)
			out.SubScenes[i] = s
		}
	}
	if c.Options != nil {
		out.Options = append([]DecisionOption(nil), c.Options...)
	}
	if c.SecondaryOptions != nil {
		out.SecondaryOptions = append([]DecisionOption(nil), c.SecondaryOptions...)
	}
	out.CharacterImages = maps.Clone(c.CharacterImages)
	if c.DigitalContent != nil {
		dc := *c.DigitalContent
		out.DigitalContent = &dc
	}
	if c.Interaction != nil {
		out.Interaction = c.Interaction.clone()
	}
	return out
}

func cloneDialog(dialog []ChatMessage) []ChatMessage {
	if dialog == nil {
		return nil
	}
	return append([]ChatMessage(nil), dialog...)
}

// CloneNodes deep copies a node list.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// FindNode returns the index of the node with id, or -1.
func FindNode(nodes []Node, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}
