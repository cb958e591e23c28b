package main

import (
	"fmt"

	"Profile_1.0/backend/go/internal/catfact"
	"Profile_1.0/backend/go/pkg/logger"

	"github.com/spf13/cobra"
)

var factCmd = &cobra.Command{
	Use:   "fact",
	Short: "Fetch one cat fact with the configured client and print it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := catfact.NewClient(cfg.FactAPI, logger.New(cfg.App.Name, "").WithField("component", "catfact"))
		res := client.Fetch(cmd.Context())

		fmt.Fprintf(cmd.OutOrStdout(), "source: %s\n", res.Source)
		if res.Reason != catfact.ReasonNone {
			fmt.Fprintf(cmd.OutOrStdout(), "reason: %s\n", res.Reason)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fact:   %s\n", res.Fact)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(factCmd)
}
