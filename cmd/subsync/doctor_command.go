package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subsync/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, credentials and upstream services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkStatus(r), r.Detail})
			}
			if err := writeRows(cmd.OutOrStdout(), []string{"Check", "Status", "Detail"}, rows, nil); err != nil {
				return err
			}
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			return nil
		},
	}
}

func checkStatus(r preflight.Result) string {
	switch {
	case r.Skipped:
		return "skip"
	case r.Passed:
		return "ok"
	default:
		return "FAIL"
	}
}
