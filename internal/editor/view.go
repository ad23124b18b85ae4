package editor

import (
	"context"
	"math"

	"github.com/WingsGames/Neve-Or/internal/assets"
	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/i18n"
)

type NodeSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	// Heavy marks nodes that still embed images in the save.
	Heavy bool `json:"heavy"`
}

type SubSceneSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	Heavy bool   `json:"heavy"`
}

type SpeakerView struct {
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Inline bool   `json:"inline"`
}

type NoticeView struct {
	Level   Level  `json:"level"`
	Text    string `json:"text"`
	Subject string `json:"subject,omitempty"`
}

type View struct {
	Nodes            []NodeSummary     `json:"nodes"`
	SelectedNode     string            `json:"selectedNode"`
	SelectedSubScene string            `json:"selectedSubScene,omitempty"`
	SubScenes        []SubSceneSummary `json:"subScenes,omitempty"`
	Description      string            `json:"description"`
	BackgroundImage  string            `json:"backgroundImage,omitempty"`
	BackgroundInline bool              `json:"backgroundInline"`
	Speakers         []SpeakerView     `json:"speakers,omitempty"`
	UsageBytes       int               `json:"usageBytes"`
	// SaveBytes is what the autosave actually writes, content text is not part of it.
	SaveBytes        int               `json:"saveBytes"`
	UsagePercent     float64           `json:"usagePercent"`
	StorageWarning   bool              `json:"storageWarning"`
	StorageMessage   string            `json:"storageMessage,omitempty"`
	Notices          []NoticeView      `json:"notices,omitempty"`
}

// View renders the editor with messages in lang.
func (e *Editor) View(ctx context.Context, translator i18n.Translator, lang i18n.Language) (View, error) {
	var v View
	err := e.run(ctx, func() error {
		state := e.game.State()
		for _, n := range state.Nodes {
			v.Nodes = append(v.Nodes, NodeSummary{ID: n.ID, Title: n.Title, Type: string(n.Type), Heavy: HasInlineImages(n)})
		}

		usage, err := Usage(state)
		if err != nil {
			return err
		}
		v.UsageBytes = usage
		if v.SaveBytes, err = campaign.Size(state); err != nil {
			return err
		}
		v.UsagePercent = math.Min(float64(usage)/StorageBudgetBytes*100, 100)
		v.StorageWarning = e.game.StorageFull() || v.UsagePercent > storageWarningPercent
		if v.StorageWarning {
			v.StorageMessage = translator.Translate("storageFull", lang)
		}
		for _, n := range e.notices {
			v.Notices = append(v.Notices, NoticeView{Level: n.Level, Text: translator.Translate(n.Key, lang), Subject: n.Subject})
		}

		node, sub, err := e.selected()
		if err != nil {
			// Nothing to select in an empty game; the selection may also point at a node that was reset away.
			e.nodeID, e.subSceneID = "", ""
			if node, sub, err = e.selected(); err != nil {
				return nil
			}
		}
		v.SelectedNode = node.ID
		v.Description = node.Data.Description
		v.BackgroundImage = node.Data.BackgroundImage
		if sub != nil {
			v.SelectedSubScene = sub.ID
			v.BackgroundImage = sub.BackgroundImage
		}
		v.BackgroundInline = assets.IsInline(v.BackgroundImage)
		for _, s := range node.Data.SubScenes {
			v.SubScenes = append(v.SubScenes, SubSceneSummary{
				ID: s.ID, Title: s.Title, Icon: s.Icon, Heavy: assets.IsInline(s.BackgroundImage),
			})
		}
		seen := map[string]bool{}
		for _, m := range node.Data.Dialog {
			if seen[m.Speaker] {
				continue
			}
			seen[m.Speaker] = true
			img := node.Data.CharacterImages[m.Speaker]
			v.Speakers = append(v.Speakers, SpeakerView{Name: m.Speaker, Image: img, Inline: assets.IsInline(img)})
		}
		return nil
	})
	return v, err
}
