package contentcheck

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/WingsGames/Neve-Or/internal/content"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "content",
	Title: "Content operations",
}

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	good  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	bad   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	muted = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func init() {
	check.Flags().String("dir", "", "directory holding nodes/*.yaml, defaults to the content built into the binary")
	Content.AddCommand(check)
}

var Content = &cobra.Command{
	Use:     "content",
	GroupID: "content",
	Short:   "Scenario content",
}

var check = &cobra.Command{
	Use:   "check",
	Short: "Validate scenario files",
	Long:  `Loads the node files of every language, validates them and prints a summary`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		var (
			catalog *content.Catalog
			err     error
		)
		if dir == "" {
			catalog, err = content.LoadEmbedded()
		} else {
			catalog, err = content.LoadFromFS(os.DirFS(dir))
		}
		if err != nil {
			Problems(cmd.OutOrStdout(), err)
			return errors.Wrap(err, "load content")
		}
		Report(cmd.OutOrStdout(), catalog)
		return nil
	},
}

// Report prints node statistics for every loaded language.
func Report(w io.Writer, catalog *content.Catalog) {
	_, _ = fmt.Fprintln(w, title.Render("Scenario content"))
	for _, lang := range catalog.Languages() {
		var playable, onMap int
		var jumps []string
		nodes := catalog.Nodes(lang)
		for _, n := range nodes {
			if n.Type.Playable() {
				playable++
				if n.Coordinates != nil {
					onMap++
				}
			}
			if n.JumpTo != "" {
				jumps = append(jumps, n.ID+" → "+n.JumpTo)
			}
		}
		_, _ = fmt.Fprintf(w, "%s %s  %d nodes, %d playable, %d on the map\n",
			good.Render("✓"), lang, len(nodes), playable, onMap)
		if len(jumps) > 0 {
			_, _ = fmt.Fprintln(w, muted.Render("  jumps: "+strings.Join(jumps, ", ")))
		}
	}
}

// Problems prints every validation failure contained in err on its own line.
func Problems(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, bad.Render("✗ content is invalid"))
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			_, _ = fmt.Fprintln(w, "  "+bad.Render(line))
		}
	}
}
