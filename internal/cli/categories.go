package cli

import (
	"encoding/json"
	"fmt"

	"github.com/autotest-tools/devlabel/internal/category"
	"github.com/spf13/cobra"
)

var categoriesJSON bool

func init() {
	categoriesCmd.Flags().BoolVar(&categoriesJSON, "json", false, "Print categories as JSON")
	rootCmd.AddCommand(categoriesCmd)
}

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"ls"},
	Short:   "List the device categories a manifest can be labeled for",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := category.All()
		out := cmd.OutOrStdout()

		if categoriesJSON {
			data, err := json.MarshalIndent(all, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling categories: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		for _, c := range all {
			fmt.Fprintf(out, "%d) %-8s label: %s\n", c.Ordinal, c.Name, c.Tag)
		}
		return nil
	},
}
