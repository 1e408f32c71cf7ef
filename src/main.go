package main

import (
	"fmt"
	"os"

	"memo-registry/src/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "memo-registry",
		Short:         "学校事務の文書（メモ）台帳サーバー",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if driver, _ := cmd.Flags().GetString("storage"); driver != "" {
				loaded.Storage.Driver = driver
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().String("storage", "", "storage driver (memory, file, sqlite, postgres, redis, s3)")

	cfgFn := func() *config.Config { return cfg }
	root.AddCommand(
		newServeCmd(cfgFn),
		newStatsCmd(cfgFn),
		newDepartmentsCmd(cfgFn),
	)
	return root
}
