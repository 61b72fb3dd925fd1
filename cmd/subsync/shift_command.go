package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"subsync/internal/srt"
)

func newShiftCommand() *cobra.Command {
	var (
		offset  float64
		startAt string
		output  string
	)

	cmd := &cobra.Command{
		Use:         "shift <file>",
		Short:       "Shift every timestamp in a local SRT file",
		Long:        "Shift moves every cue by --offset seconds (negative moves earlier, clamped at zero) or aligns the first cue to --start-at.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			offsetSet := cmd.Flags().Changed("offset")
			startSet := strings.TrimSpace(startAt) != ""
			if offsetSet == startSet {
				return errors.New("specify exactly one of --offset or --start-at")
			}

			input := args[0]
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}
			text := srt.Decode(data)

			var shifted string
			if offsetSet {
				shifted, err = srt.Shift(text, offset)
			} else {
				at, parseErr := srt.ParseTimeString(startAt)
				if parseErr != nil {
					return fmt.Errorf("--start-at: %w", parseErr)
				}
				shifted, err = srt.AlignFirst(text, at)
			}
			if err != nil {
				return fmt.Errorf("shift %s: %w", input, err)
			}

			target := output
			if target == "" {
				target = siblingPath(input, "_synced")
			}
			if err := writeSubtitle(cmd, target, shifted); err != nil {
				return err
			}
			if target != "-" {
				doc, _ := srt.Parse(shifted)
				stats := doc.Stats()
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d cues, first at %s)\n", target, stats.Cues, srt.FormatTimestamp(stats.FirstStart))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&offset, "offset", 0, "Seconds to add to every timestamp (fractional and negative allowed)")
	cmd.Flags().StringVar(&startAt, "start-at", "", "Align the first cue to this time (HH:MM:SS,mmm, MM:SS or seconds)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default <name>_synced.srt, - for stdout)")
	return cmd
}
