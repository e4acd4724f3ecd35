package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/config"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/job"
)

func newSyncCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Export configured documents and publish the changed ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			runner, err := job.NewRunner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			results, err := runner.Run(cmd.Context(), cfg.Documents)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			for _, res := range results {
				status := "unchanged"
				if res.Published {
					status = "published"
				}
				logger.WithFields(logrus.Fields{
					"document_id": res.DocumentID,
					"key":         res.Output,
					"bytes":       res.Bytes,
				}).Info(status)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", res.DocumentID, res.Output, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "sheetjson.yaml", "Sync configuration file")
	return cmd
}
