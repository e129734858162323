package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
)

var deployCmd = &cobra.Command{
	Use:   "deploy --artifact REF --version LABEL",
	Short: "Release an artifact to the idle slot and switch traffic to it",
	Long: `deploy places the artifact on the inactive slot, waits for its rollout,
validates its health, switches traffic and scales the previous slot down.
The finalized release report is printed to stdout as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		artifact, _ := cmd.Flags().GetString("artifact")
		version, _ := cmd.Flags().GetString("version")
		trigger, _ := cmd.Flags().GetString("trigger")

		triggeredBy, err := domain.ParseTrigger(trigger)
		if err != nil {
			return err
		}
		d, err := domain.NewReleaseDescriptor(artifact, version, triggeredBy)
		if err != nil {
			return err
		}

		orc, _, err := newOrchestrator(cmd)
		if err != nil {
			return err
		}

		report, err := orc.Deploy(cmd.Context(), uuid.NewString(), d)
		printReport(cmd.OutOrStdout(), report)

		if err == nil {
			return nil
		}
		if relerr.AsCleanupFailure(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: released, but the previous slot is not torn down: %v\n", err)
			return nil
		}
		if phase, ok := failingPhase(report); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "release failed at %s: %s\n", phase.Name, phase.Detail)
		}
		return err
	},
}

func init() {
	deployCmd.Flags().String("artifact", "", "artifact reference to release (e.g. registry.example.com/myapp:1.3.0)")
	deployCmd.Flags().String("version", "", "human-facing version label (e.g. 1.3.0)")
	deployCmd.Flags().String("trigger", string(domain.TriggerManual), "what started this release. branch_push|tag|manual")
	deployCmd.MarkFlagRequired("artifact")
	deployCmd.MarkFlagRequired("version")
}
