package main

import (
	"fmt"
	"os"

	"github.com/WingsGames/Neve-Or/cmd/cli/contentcheck"
	"github.com/WingsGames/Neve-Or/cmd/cli/img"
	"github.com/WingsGames/Neve-Or/cmd/cli/save"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(img.Group)
	rootCmd.AddCommand(img.Generate)
	rootCmd.AddGroup(contentcheck.Group)
	rootCmd.AddCommand(contentcheck.Content)
	rootCmd.AddGroup(save.Group)
	rootCmd.AddCommand(save.Save)
}

var rootCmd = &cobra.Command{
	Use:  "neveor-cli",
	Long: `Command line utilities for the Neve Or game server`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
