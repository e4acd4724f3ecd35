package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr          string
		maxUploadSize int64
		timeout       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the convert API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				MaxUploadSize:  maxUploadSize,
				RequestTimeout: timeout,
				Logger:         logger,
			})
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().Int64Var(&maxUploadSize, "max-upload-size", server.DefaultMaxUploadSize, "Maximum workbook size in bytes")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Per-request timeout")
	return cmd
}
