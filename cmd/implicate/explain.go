package main

import (
	"fmt"
	"os"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/internal/presentation/graph"
	"github.com/aretw0/implicate/internal/presentation/tui"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var explainCmd = &cobra.Command{
	Use:   "explain <type> <id>",
	Short: "Show how an attribute is resolved",
	Long:  `Resolves an attribute and prints every lookup and rule attempt involved. Output is rendered as markdown on a terminal.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		key := domain.Key{Type: args[0], ID: args[1]}
		value, ok, trace, err := rt.Registry.Explain(cmd.Context(), key.Type, key.ID)
		if err != nil {
			return err
		}

		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			infos := implicate.DescribeRules(rt.Registry.Rules())
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(infos, graph.OverlayFromTrace(key.Type, trace)))
			return nil
		}

		plain, _ := cmd.Flags().GetBool("plain")
		if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprint(cmd.OutOrStdout(), tui.ExplainText(key, value, ok, trace))
			return nil
		}

		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(tui.ExplainMarkdown(key, value, ok, trace))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().Bool("plain", false, "Disable markdown rendering")
	explainCmd.Flags().Bool("mermaid", false, "Print the rule graph with the resolution overlaid, as a Mermaid flowchart")
}
