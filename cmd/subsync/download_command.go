package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subsync/internal/config"
	"subsync/internal/fileutil"
	"subsync/internal/providers"
	"subsync/internal/server"
	"subsync/internal/srt"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var (
		syncSeconds float64
		output      string
	)

	cmd := &cobra.Command{
		Use:   "download <ref>",
		Short: "Download a subtitle by reference, optionally shifted",
		Long:  "Download fetches a subtitle using the ref printed by search (opensubtitles:<file id> or subdl:<path>). A bare number is treated as an OpenSubtitles file id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseCLIRef(args[0])
			if err != nil {
				return err
			}
			return ctx.withComponents(cmd.Context(), server.ComponentOptions{SkipTranslator: true}, func(_ *config.Config, comps *server.Components) error {
				text, name, err := fetchSubtitle(cmd.Context(), comps, ref)
				if err != nil {
					return err
				}
				suffix := ""
				if cmd.Flags().Changed("sync") {
					text, err = srt.Shift(text, syncSeconds)
					if err != nil {
						return err
					}
					suffix = "_synced"
				}
				target := output
				if target == "" {
					target = siblingPath(name, suffix)
				}
				if err := writeSubtitle(cmd, target, text); err != nil {
					return err
				}
				if target != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", target)
				}
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&syncSeconds, "sync", 0, "Shift every timestamp by this many seconds")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default provider file name, - for stdout)")
	return cmd
}

func parseCLIRef(value string) (providers.Ref, error) {
	value = strings.TrimSpace(value)
	if id, err := strconv.ParseInt(value, 10, 64); err == nil && id > 0 {
		return providers.Ref{Provider: providers.KindOpenSubtitles, FileID: id}, nil
	}
	return providers.ParseRef(value)
}

// fetchSubtitle downloads ref and returns decoded text plus a local file name.
func fetchSubtitle(ctx context.Context, comps *server.Components, ref providers.Ref) (string, string, error) {
	payload, err := comps.Registry.Download(ctx, ref)
	if err != nil {
		return "", "", err
	}
	name := fileutil.SafeFileName(payload.FileName, "subtitle.srt")
	return srt.Decode(payload.Data), name, nil
}
