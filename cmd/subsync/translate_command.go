package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subsync/internal/config"
	"subsync/internal/language"
	"subsync/internal/server"
	"subsync/internal/srt"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var (
		from   string
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "translate <file|ref>",
		Short: "Translate a subtitle file, keeping its timing",
		Long:  "Translate reads a local SRT file, or downloads one when the argument is a provider ref, and writes the translated cues with the original timestamps.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := language.ToISO2(strings.TrimSpace(to))
			if target == "" {
				return errors.New("--to is required")
			}
			return ctx.withComponents(cmd.Context(), server.ComponentOptions{}, func(_ *config.Config, comps *server.Components) error {
				text, name, err := readSource(cmd, comps, args[0])
				if err != nil {
					return err
				}
				translated, err := comps.Translator.TranslateDocument(cmd.Context(), text, from, target)
				if err != nil {
					return err
				}
				dest := output
				if dest == "" {
					dest = siblingPath(name, "_"+target)
				}
				if err := writeSubtitle(cmd, dest, translated); err != nil {
					return err
				}
				if dest != "-" {
					doc, _ := srt.Parse(translated)
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d cues, %s via %s)\n", dest, doc.Stats().Cues, language.DisplayName(target), comps.Translator.Engine().Name())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "auto", "Source language code, or auto")
	cmd.Flags().StringVar(&to, "to", "", "Target language code")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default <name>_<to>.srt, - for stdout)")
	return cmd
}

// readSource loads a local file when arg names one, otherwise downloads it as
// a provider ref.
func readSource(cmd *cobra.Command, comps *server.Components, arg string) (string, string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", arg, err)
		}
		return srt.Decode(data), arg, nil
	}
	ref, err := parseCLIRef(arg)
	if err != nil {
		return "", "", fmt.Errorf("%s is neither a file nor a subtitle ref: %w", arg, err)
	}
	text, name, err := fetchSubtitle(cmd.Context(), comps, ref)
	if err != nil {
		return "", "", err
	}
	return text, filepath.Base(name), nil
}
