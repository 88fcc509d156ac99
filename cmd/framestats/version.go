package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getsentry/framestats/internal/source"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of framestats",
		Run: func(cmd *cobra.Command, args []string) {
			v := release
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "framestats %s (session format %d)\n", v, source.Version)
		},
	}
}
