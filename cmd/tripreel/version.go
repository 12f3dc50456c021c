package main

import (
	"fmt"

	"github.com/aretw0/tripreel"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tripreel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tripreel version %s\n", tripreel.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
