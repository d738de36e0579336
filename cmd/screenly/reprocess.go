package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess <application-id>",
	Short: "Run the evaluation pipeline for one application and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runReprocess,
}

func runReprocess(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid application id %q: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if err := d.pipeline.Process(ctx, id); err != nil {
		return err
	}

	eval, err := d.evalRepo.FindByApplicationID(ctx, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Application: %s\n", id)
	fmt.Fprintf(out, "Score:       %.1f\n", eval.Score)
	fmt.Fprintf(out, "Rationale:   %s\n", eval.Rationale)
	fmt.Fprintf(out, "Summary:     %s\n", eval.Summary)
	if eval.ExportRowRef != nil {
		fmt.Fprintf(out, "Exported:    %s\n", *eval.ExportRowRef)
	}
	return nil
}
