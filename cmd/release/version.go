package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slotswap/slotswap/pkg/buildtime"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build revision",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildtime.VersionString())
	},
}
