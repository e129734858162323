package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which slot is active and what each slot runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output != "json" && output != "text" {
			return fmt.Errorf("--output %q: must be json or text", output)
		}

		orc, _, err := newOrchestrator(cmd)
		if err != nil {
			return err
		}
		env, err := orc.Status(cmd.Context())
		if err != nil {
			return err
		}

		if output == "json" {
			body, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLOT\tACTIVE\tPHASE\tREPLICAS\tARTIFACT\tVERSION")
		for _, s := range env.Slots {
			active := ""
			if s.Active {
				active = "*"
			}
			fmt.Fprintf(
				w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
				s.Name, active, s.Phase, s.ObservedReplicas, s.DesiredReplicas,
				orDash(s.Artifact), orDash(s.Version),
			)
		}
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().String("output", "text", "output format. json|text")
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
