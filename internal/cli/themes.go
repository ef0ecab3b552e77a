package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available mantra themes",
	RunE:  runThemes,
}

func runThemes(cmd *cobra.Command, args []string) error {
	db, cat, err := openDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	names := cat.Names()
	if len(names) == 0 {
		fmt.Println("no themes loaded")
		return nil
	}

	for _, name := range names {
		t, _ := cat.Get(name)
		fmt.Printf("%s (%d mantras)\n", color.New(color.Bold).Sprint(t.Name), len(t.Mantras))
		if t.Description != "" {
			fmt.Printf("  %s\n", t.Description)
		}
	}
	return nil
}
