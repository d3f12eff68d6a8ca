package main

import (
	"fmt"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		infos := implicate.DescribeRules(rt.Registry.Rules())
		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(infos, nil))
			return nil
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No rules registered.")
			return nil
		}
		for i, info := range infos {
			line := fmt.Sprintf("%d. %s", i+1, info.Descriptor)
			switch info.Conditions {
			case 0:
			case 1:
				line += " (1 condition)"
			default:
				line += fmt.Sprintf(" (%d conditions)", info.Conditions)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().Bool("mermaid", false, "Print the rule graph as a Mermaid flowchart")
}
