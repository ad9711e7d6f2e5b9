package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCategoriesCmd lists the configured question sets.
func NewCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List available quiz categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			categories, err := d.categories.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tQUESTIONS\tMINUTES")
			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", c.ID, c.Title, len(c.Questions), c.TimeLimitMinutes)
			}
			return w.Flush()
		},
	}
}
