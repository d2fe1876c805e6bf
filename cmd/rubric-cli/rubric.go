package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

func rubricCmd(g *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Load the rubric and print the parsed criteria",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			rows, err := scorer.LoadRubricFrom(cfg.RubricCandidates()...)
			if err != nil {
				return err
			}
			criteria := scorer.ParseRubric(rows)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(criteria)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCRITERION\tWEIGHT\tMIN\tMAX\tKEYWORDS")
			for _, c := range criteria {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\t%s\n",
					c.ID, c.Name, c.Weight, formatBound(c.MinWords), formatBound(c.MaxWords),
					strings.Join(c.Keywords, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print criteria as JSON")
	return cmd
}

func formatBound(b *int) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprint(*b)
}
