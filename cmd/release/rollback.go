package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Switch traffic back to the release on the inactive slot",
	Long: `rollback brings the inactive slot's release back into service: the slot is
scaled up if needed, its rollout and health are verified, then traffic is
switched back. It refuses to run when that slot has never held a release.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, _, err := newOrchestrator(cmd)
		if err != nil {
			return err
		}

		report, err := orc.Rollback(cmd.Context(), uuid.NewString())
		printReport(cmd.OutOrStdout(), report)

		if err == nil {
			return nil
		}
		if relerr.AsCleanupFailure(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: rolled back, but the abandoned slot is not torn down: %v\n", err)
			return nil
		}
		if phase, ok := failingPhase(report); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "rollback failed at %s: %s\n", phase.Name, phase.Detail)
		}
		return err
	},
}
