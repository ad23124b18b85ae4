// Package content loads the scenario nodes of every language and validates them.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalidContent = errors.NewSentinel("invalid content")

//go:embed nodes/*.yaml
var embeddedNodes embed.FS

type file struct {
	Language string    `yaml:"language"`
	Nodes    []nodeDoc `yaml:"nodes"`
}

type nodeDoc struct {
	ID          string              `yaml:"id"`
	Title       string              `yaml:"title"`
	Type        models.NodeType     `yaml:"type"`
	Coordinates *models.Coordinates `yaml:"coordinates"`
	JumpTo      string              `yaml:"jumpTo"`
	Data        dataDoc             `yaml:"data"`
}

type dataDoc struct {
	models.NodeContent `yaml:",inline"`
	Interaction        *interactionDoc `yaml:"interaction"`
}

type itemDoc struct {
	ID        string `yaml:"id"`
	Text      string `yaml:"text"`
	Image     string `yaml:"image"`
	IsCorrect bool   `yaml:"isCorrect"`
	IsDanger  bool   `yaml:"isDanger"`
}

type interactionDoc struct {
	Type           models.InteractionType `yaml:"type"`
	Question       string                 `yaml:"question"`
	Answers        []models.Answer        `yaml:"answers"`
	Items          []itemDoc              `yaml:"items"`
	RequiredVisits int                    `yaml:"requiredVisits"`
	Questions      []models.CodeQuestion  `yaml:"questions"`
	TargetCode     string                 `yaml:"targetCode"`
}

func (d *interactionDoc) model() (models.Interaction, error) {
	if d == nil {
		return nil, nil //nolint:nilnil // no interaction is a valid configuration
	}
	switch d.Type {
	case models.InteractionNone, "":
		return nil, nil //nolint:nilnil // no interaction is a valid configuration
	case models.InteractionMultipleChoice:
		return models.MultipleChoice{Question: d.Question, Answers: d.Answers}, nil
	case models.InteractionBalloons:
		items := make([]models.BalloonItem, len(d.Items))
		for i, it := range d.Items {
			items[i] = models.BalloonItem{ID: it.ID, Text: it.Text, Image: it.Image, IsCorrect: it.IsCorrect}
		}
		return models.Balloons{Items: items}, nil
	case models.InteractionShield:
		items := make([]models.ShieldItem, len(d.Items))
		for i, it := range d.Items {
			items[i] = models.ShieldItem{ID: it.ID, Text: it.Text, Image: it.Image, IsDanger: it.IsDanger}
		}
		return models.Shield{Items: items}, nil
	case models.InteractionSubLocations:
		return models.SubLocations{RequiredVisits: d.RequiredVisits}, nil
	case models.InteractionCodeCracker:
		return models.CodeCracker{Questions: d.Questions, TargetCode: d.TargetCode}, nil
	default:
		return nil, errors.Wrap(ErrInvalidContent, "unknown interaction type", slog.String("type", string(d.Type)))
	}
}

// Catalog holds the pristine node list of every language. Callers always receive deep copies.
type Catalog struct {
	nodes map[i18n.Language][]models.Node
}

// LoadEmbedded loads the node files compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedNodes)
}

// MustLoadEmbedded panics when the embedded content is broken, which is a build defect.
func MustLoadEmbedded() *Catalog {
	c, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFromFS loads and validates every nodes/*.yaml file from fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "nodes/*.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "glob nodes")
	}
	sort.Strings(paths)

	c := &Catalog{nodes: map[i18n.Language][]models.Node{}}
	for _, p := range paths {
		var (
			data  []byte
			f     file
			nodes []models.Node
		)
		if data, err = fs.ReadFile(fsys, p); err != nil {
			return nil, errors.Wrap(err, "read node file")
		}
		if err = yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("parse %s", path.Base(p)))
		}
		lang, ok := i18n.Parse(f.Language)
		if !ok {
			return nil, errors.Wrap(ErrInvalidContent, "unsupported language", slog.String("file", path.Base(p)))
		}
		if nodes, err = toModels(f.Nodes); err != nil {
			return nil, errors.Wrap(err, "convert nodes", slog.String("file", path.Base(p)))
		}
		if err = Validate(nodes); err != nil {
			return nil, errors.Wrap(err, "validate nodes", slog.String("file", path.Base(p)))
		}
		c.nodes[lang] = nodes
	}
	if _, ok := c.nodes[i18n.Default]; !ok {
		return nil, errors.Wrap(ErrInvalidContent, "default language missing")
	}
	return c, nil
}

func toModels(docs []nodeDoc) ([]models.Node, error) {
	nodes := make([]models.Node, len(docs))
	for i, d := range docs {
		interaction, err := d.Data.Interaction.model()
		if err != nil {
			return nil, errors.Wrap(err, "interaction", slog.String("nodeID", d.ID))
		}
		data := d.Data.NodeContent
		data.Interaction = interaction
		nodes[i] = models.Node{
			ID:          d.ID,
			Title:       d.Title,
			Type:        d.Type,
			Coordinates: d.Coordinates,
			JumpTo:      d.JumpTo,
			Data:        data,
		}
	}
	return nodes, nil
}

// Nodes returns a fresh copy of the nodes in lang, falling back to the default language.
func (c *Catalog) Nodes(lang i18n.Language) []models.Node {
	nodes, ok := c.nodes[lang]
	if !ok {
		nodes = c.nodes[i18n.Default]
	}
	return models.CloneNodes(nodes)
}

// Languages lists the loaded languages.
func (c *Catalog) Languages() []i18n.Language {
	var out []i18n.Language
	for _, l := range i18n.Supported() {
		if _, ok := c.nodes[l]; ok {
			out = append(out, l)
		}
	}
	return out
}
