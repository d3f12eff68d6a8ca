package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <type> <id>",
	Short: "Resolve an attribute value",
	Long:  `Prints the stored value of an attribute, or derives it from the registered rules. Exits non-zero when the value is absent.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		value, ok, err := rt.Registry.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s/%s is absent", args[0], args[1])
		}

		if s, isString := value.(string); isString {
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		}
		out, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("cannot encode value: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
