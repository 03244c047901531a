package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flagquest/internal/catalog"
	"github.com/vovakirdan/flagquest/internal/config"
)

var flagRegion string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the flag catalog",
	Long: `Shows every flag in the catalog, easiest first, or a summary per region.

The catalog is read from the path in the game config, then
~/.flagquest/flags.yaml, ./configs/flags.yaml and finally the built-in list.

Examples:
  flagquest catalog
  flagquest catalog --region Europe`,
	Args: cobra.NoArgs,
	Run:  runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&flagRegion, "region", "", "Only show flags from this region")
}

func runCatalog(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var flags []catalog.Flag
	for _, f := range cat.SortedByDifficulty() {
		if flagRegion == "" || strings.EqualFold(f.Region, flagRegion) {
			flags = append(flags, f)
		}
	}

	if len(flags) == 0 {
		fmt.Println("No flags match.")
		return
	}

	fmt.Printf("  %-6s  %-28s  %-10s  %s\n", "Code", "Name", "Difficulty", "Region")
	fmt.Printf("  %-6s  %-28s  %-10s  %s\n", "----", "----", "----------", "------")
	for _, f := range flags {
		fmt.Printf("  %-6s  %-28s  %-10.1f  %s\n", f.Code, f.Name, f.Difficulty, f.Region)
	}

	fmt.Println()
	regions := cat.Regions()
	names := make([]string, 0, len(regions))
	for r := range regions {
		names = append(names, r)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, r := range names {
		parts = append(parts, fmt.Sprintf("%s %d", r, regions[r]))
	}
	fmt.Printf("%d flags shown of %d (%s)\n", len(flags), cat.Len(), strings.Join(parts, ", "))
}
