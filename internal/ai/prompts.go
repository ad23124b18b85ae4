package ai

import (
	"fmt"
	"strings"

	"github.com/WingsGames/Neve-Or/internal/models"
)

// ScenePrompt illustrates a scene description in the game's art style.
func ScenePrompt(description string) string {
	return fmt.Sprintf("Create a clean, text-free vector art illustration in digital city style, flat design, "+
		"modern colors. The scene depicts: %s. NO WORDS, NO LABELS, NO TEXT. Aspect ratio 16:9.", description)
}

// CharacterPrompt draws an avatar of a speaker in the given mood.
func CharacterPrompt(name string, mood models.Mood) string {
	if mood == "" {
		mood = models.MoodNeutral
	}
	return fmt.Sprintf("Create a vector art avatar portrait of a character named %q, looking %s. "+
		"Digital city style, flat design, circle background. Minimalist features. NO TEXT. Aspect ratio 1:1.",
		name, mood)
}

// ItemPrompt draws an interaction item such as a balloon or shield target.
func ItemPrompt(description string) string {
	return fmt.Sprintf("Create a simple, clean vector art icon or illustration of: %s. Digital flat design style, "+
		"white background, minimalist. Purely visual object. NO TEXT. Aspect ratio 1:1.", description)
}

// sceneOverrides replace the description of scenes whose text makes for poor illustrations.
var sceneOverrides = map[string]string{
	"town_square": "A beautiful wide city square in a modern digital city. Sunny day. People walking peacefully, " +
		"open paved space, a few trees, benches, city skyline in background. Wide angle view, single unified " +
		"composition, vector art style. No split screen.",
	"newspaper_office": "A close-up view of a modern journalist's desk. Aesthetic and clean office interior. " +
		"Includes a computer screen (blank), a coffee cup, notebooks, and pens. Soft lighting. Digital city vector " +
		"art style. STRICTLY NO TEXT, NO HEADLINES, NO LETTERS anywhere.",
}

var locationDescriptors = []struct {
	keys       []string
	descriptor string
}{
	{
		keys: []string{"school", "בית ספר"},
		descriptor: "Interior of a modern high school classroom. Rows of student desks, a large whiteboard or " +
			"blackboard, educational posters on walls, school hallway, lockers. Bright educational setting.",
	},
	{
		keys: []string{"cafe", "קפה"},
		descriptor: "Interior of a cozy urban coffee shop. Espresso machine, small round tables, customers " +
			"sitting with laptops, warm lighting, coffee cups.",
	},
	{
		keys: []string{"square", "כיכר"},
		descriptor: "A public city square outdoors. Wide open paved space, a central fountain or statue, " +
			"benches, city skyline in background, people walking.",
	},
	{
		keys: []string{"neighborhood", "מגורים"},
		descriptor: "A quiet residential street view. Apartment building facades, sidewalk, street lamps, " +
			"some greenery, parked cars.",
	},
}

// BackgroundPrompt builds the prompt for the background of node, or of its sub-scene when sub is not nil.
func BackgroundPrompt(node models.Node, sub *models.SubScene) string {
	if sub == nil {
		if override, ok := sceneOverrides[node.ID]; ok {
			return override
		}
		return ScenePrompt(node.Data.Description)
	}
	var descriptor string
	id := strings.ToLower(sub.ID)
	for _, d := range locationDescriptors {
		if strings.Contains(id, d.keys[0]) || strings.Contains(sub.Title, d.keys[1]) {
			descriptor = d.descriptor
			break
		}
	}
	return ScenePrompt(fmt.Sprintf("Specific location scene: %s. %s (Context from story: %s)",
		sub.Title, descriptor, node.Data.Description))
}
