package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scrollkit-dev/scrollkit/pkg/window"
)

func graphCmd() *cobra.Command {
	var (
		itemHeight int
		viewport   int
		items      int
		overscan   int
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the demo window graph",
		Long: `Build the virtual-scroll window graph and print each property's
tier, policy, and prerequisites.

Examples:
  scrollkit graph
  scrollkit graph --items=50000 --item-height=32`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := window.New(window.Config{
				ItemHeight:     itemHeight,
				ViewportHeight: viewport,
				ItemCount:      items,
				Overscan:       overscan,
			})
			if err != nil {
				return err
			}
			return printGraph(cmd, w)
		},
	}

	cmd.Flags().IntVar(&itemHeight, "item-height", 24, "Item height in pixels")
	cmd.Flags().IntVar(&viewport, "viewport", 600, "Viewport height in pixels")
	cmd.Flags().IntVar(&items, "items", 10_000, "Logical list length")
	cmd.Flags().IntVar(&overscan, "overscan", 4, "Extra items rendered on each side")

	return cmd
}

func printGraph(cmd *cobra.Command, w *window.Window) error {
	m := w.Manager()
	names := m.Names()

	// Group by tier so the evaluation order reads top to bottom.
	byTier := map[int][]string{}
	maxTier := 0
	for _, name := range names {
		tier, err := m.Tier(name)
		if err != nil {
			return err
		}
		byTier[tier] = append(byTier[tier], name)
		if tier > maxTier {
			maxTier = tier
		}
	}

	for tier := 0; tier <= maxTier; tier++ {
		nodes := byTier[tier]
		sort.Strings(nodes)
		fmt.Fprintf(cmd.OutOrStdout(), "tier %d:\n", tier)
		for _, name := range nodes {
			policy, _ := m.PolicyOf(name)
			prereqs, _ := m.Prerequisites(name)
			line := fmt.Sprintf("  %-16s %s", name, policy)
			if len(prereqs) > 0 {
				line += "  <- " + strings.Join(prereqs, ", ")
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	return nil
}
