package img

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/WingsGames/Neve-Or/internal/ai"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/logging"
	"github.com/WingsGames/Neve-Or/internal/models"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "img",
	Title: "Image operations",
}

var ErrUnknownKind = errors.NewSentinel("unknown image kind")

type Kind string

const (
	KindScene     Kind = "scene"
	KindCharacter Kind = "character"
	KindItem      Kind = "item"
	KindRaw       Kind = "raw"
)

func init() {
	Generate.Flags().String("out", "./out.png", "path to generated image file")
	Generate.Flags().String("kind", string(KindScene), "scene, character, item or raw")
	Generate.Flags().String("mood", string(models.MoodNeutral), "mood of a character")
}

// Prompt wraps text in the art direction of the game for kind. For characters text is the name.
func Prompt(kind Kind, text string, mood models.Mood) (string, ai.Aspect, error) {
	switch kind {
	case KindScene:
		return ai.ScenePrompt(text), ai.Landscape, nil
	case KindCharacter:
		return ai.CharacterPrompt(text, mood), ai.Square, nil
	case KindItem:
		return ai.ItemPrompt(text), ai.Square, nil
	case KindRaw:
		return text, ai.Square, nil
	}
	return "", "", errors.Wrap(ErrUnknownKind, "build prompt", slog.String("kind", string(kind)))
}

var Generate = &cobra.Command{
	Use:     "gen [description]",
	GroupID: "img",
	Short:   "Generate image",
	Long:    `Generates a scene background, character portrait or item icon in the game's art style with Dall-E`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			flags = cmd.Flags()
			ctx   = context.Background()
		)
		kind, _ := flags.GetString("kind")
		mood, _ := flags.GetString("mood")
		outPath, _ := flags.GetString("out")

		prompt, aspect, err := Prompt(Kind(kind), strings.Join(args, " "), models.Mood(mood))
		if err != nil {
			return err
		}

		logger := logging.New(os.Stderr, slog.LevelInfo)
		client := ai.NewClient(os.Getenv("OPENAI_API_KEY"), logger)
		imgBytes, err := client.Image(ctx, prompt, aspect)
		if err != nil {
			return errors.Wrap(err, "generate image")
		}

		imgData, err := png.Decode(bytes.NewReader(imgBytes))
		if err != nil {
			return errors.Wrap(err, "decode png")
		}
		file, err := os.Create(outPath)
		if err != nil {
			return errors.Wrap(err, "create file")
		}
		defer func(file *os.File) {
			_ = file.Close()
		}(file)

		if err = png.Encode(file, imgData); err != nil {
			return errors.Wrap(err, "encode png")
		}

		fmt.Printf("The image was saved as %s\n", outPath)
		return nil
	},
}
