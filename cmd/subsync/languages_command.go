package main

import (
	"context"

	"github.com/spf13/cobra"

	"subsync/internal/config"
	"subsync/internal/language"
	"subsync/internal/server"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	var (
		translation bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List searchable or translatable languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := server.ComponentOptions{SkipTranslator: !translation}
			return ctx.withComponents(cmd.Context(), opts, func(_ *config.Config, comps *server.Components) error {
				options := listLanguages(cmd.Context(), comps, translation)
				if jsonOutput {
					if options == nil {
						options = []language.Option{}
					}
					return writeJSON(cmd, options)
				}
				rows := make([][]string, 0, len(options))
				for _, opt := range options {
					rows = append(rows, []string{opt.Code, opt.Name})
				}
				return writeRows(cmd.OutOrStdout(), []string{"Code", "Name"}, rows, nil)
			})
		},
	}

	cmd.Flags().BoolVar(&translation, "translation", false, "List translation engine languages instead of search languages")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print languages as JSON")
	return cmd
}

// listLanguages asks the live source first and falls back to the catalog.
func listLanguages(ctx context.Context, comps *server.Components, translation bool) []language.Option {
	if translation {
		if comps.Translator != nil {
			if options, err := comps.Translator.Languages(ctx); err == nil && len(options) > 0 {
				return options
			}
		}
		return comps.Catalog.TranslationOptions()
	}
	if source := comps.LanguageSource(); source != nil {
		if options, err := source.Languages(ctx); err == nil && len(options) > 0 {
			return options
		}
	}
	codes := comps.Catalog.SearchLanguages()
	options := make([]language.Option, 0, len(codes))
	for _, code := range codes {
		options = append(options, language.Option{Code: code, Name: language.DisplayName(code)})
	}
	return options
}
