package models

type InteractionType string

const (
	InteractionNone           InteractionType = "NONE"
	InteractionMultipleChoice InteractionType = "MULTIPLE_CHOICE"
	InteractionBalloons       InteractionType = "BALLOONS"
	InteractionShield         InteractionType = "DRAG_SHIELD"
	InteractionSubLocations   InteractionType = "CITY_HALL_SUB_LOCATIONS"
	InteractionCodeCracker    InteractionType = "CODE_CRACKER"
)

const (
	// DefaultRequiredVisits is how many sub-locations the player must hear before deciding.
	DefaultRequiredVisits = 3
	// DefaultTargetCode is the combination collected over the final quiz.
	DefaultTargetCode = "3242"
)

// Interaction is the mechanic configured for a node. The concrete types below are the only implementations.
type Interaction interface {
	Type() InteractionType
	clone() Interaction
}

type Answer struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct" yaml:"correct"`
}

type MultipleChoice struct {
	Question string
	Answers  []Answer
}

func (MultipleChoice) Type() InteractionType { return InteractionMultipleChoice }

func (m MultipleChoice) clone() Interaction {
	m.Answers = append([]Answer(nil), m.Answers...)
	return m
}

type BalloonItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"`
	IsCorrect bool   `json:"isCorrect"`
}

// Balloons asks the player to pop every balloon showing a violation.
type Balloons struct {
	Items []BalloonItem
}

func (Balloons) Type() InteractionType { return InteractionBalloons }

func (b Balloons) clone() Interaction {
	b.Items = append([]BalloonItem(nil), b.Items...)
	return b
}

type ShieldItem struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Image    string `json:"image,omitempty"`
	IsDanger bool   `json:"isDanger"`
}

// Shield asks the player to protect every endangered item.
type Shield struct {
	Items []ShieldItem
}

func (Shield) Type() InteractionType { return InteractionShield }

func (s Shield) clone() Interaction {
	s.Items = append([]ShieldItem(nil), s.Items...)
	return s
}

// SubLocations reads its locations from NodeContent.SubScenes.
type SubLocations struct {
	RequiredVisits int
}

func (SubLocations) Type() InteractionType { return InteractionSubLocations }

func (s SubLocations) clone() Interaction { return s }

// Required returns the configured threshold or the default.
func (s SubLocations) Required() int {
	if s.RequiredVisits <= 0 {
		return DefaultRequiredVisits
	}
	return s.RequiredVisits
}

type CodeOption struct {
	Text string `json:"text" yaml:"text"`
	// Value is the digit the option contributes; zero marks a wrong answer.
	Value int `json:"value" yaml:"value"`
}

type CodeQuestion struct {
	ID          string       `json:"id" yaml:"id"`
	Question    string       `json:"question" yaml:"question"`
	Options     []CodeOption `json:"options" yaml:"options"`
	Explanation string       `json:"explanation" yaml:"explanation"`
}

type CodeCracker struct {
	Questions  []CodeQuestion
	TargetCode string
}

func (CodeCracker) Type() InteractionType { return InteractionCodeCracker }

func (c CodeCracker) clone() Interaction {
	qs := make([]CodeQuestion, len(c.Questions))
	for i, q := range c.Questions {
		q.Options = append([]CodeOption(nil), q.Options...)
		qs[i] = q
	}
	c.Questions = qs
	return c
}

// Target returns the configured code or the default.
func (c CodeCracker) Target() string {
	if c.TargetCode == "" {
		return DefaultTargetCode
	}
	return c.TargetCode
}
