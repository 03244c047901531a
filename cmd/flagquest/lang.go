package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var langCmd = &cobra.Command{
	Use:   "lang [code]",
	Short: "Show or set the preferred language",
	Long: `Shows the preferred language, or sets it when a code is given. Signed-in
players keep the setting in their remote record.

Examples:
  flagquest lang
  flagquest lang fr --user alice`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLang,
}

func runLang(_ *cobra.Command, args []string) {
	ctx := context.Background()
	a := mustOpenApp(ctx, log.WarnLevel)
	defer a.Close()

	rec := a.svc.Reconciler()
	id := a.identity()

	if len(args) == 0 {
		lang := rec.PreferredLanguage(ctx, id)
		if lang == "" {
			lang = "(not set)"
		}
		fmt.Println(lang)
		return
	}

	if err := rec.SetPreferredLanguage(ctx, id, args[0]); err != nil {
		a.fail("%v", err)
	}
	fmt.Printf("Preferred language set to %s\n", args[0])
}
