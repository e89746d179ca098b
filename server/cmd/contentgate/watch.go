package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"contentgate/server/internal/model"
	"contentgate/server/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var scan bool
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-validate content files in a directory whenever they are saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			in := a.newIntake(a.newValidator())
			out := cmd.OutOrStdout()

			validate := func(ctx context.Context, path string, raw []byte) (model.ValidationReport, error) {
				rec, err := in.Submit(ctx, raw, "watch:"+path)
				if err != nil {
					return model.ValidationReport{}, err
				}
				return rec.Report, nil
			}
			onResult := func(r watch.Result) {
				if r.Err != nil {
					fmt.Fprintf(out, "%s: error: %v\n", r.Path, r.Err)
					return
				}
				_ = writeJSON(out, fileReport{File: r.Path, Report: r.Report}, false)
			}

			w, err := watch.New(args[0], validate, onResult, a.cfg.Watch.Debounce, a.log)
			if err != nil {
				return err
			}
			w.SetMaxBytes(a.cfg.Intake.MaxBodyBytes)
			if scan {
				if err := w.ScanExisting(ctx); err != nil {
					_ = w.Close()
					return err
				}
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&scan, "scan", true, "validate existing files before watching")
	return cmd
}
