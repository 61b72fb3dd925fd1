package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subsync/internal/config"
	"subsync/internal/language"
	"subsync/internal/providers"
	"subsync/internal/server"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		languages     []string
		providerNames []string
		imdbID        string
		year          int
		season        int
		episode       int
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search subtitle providers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := providers.Query{
				Text:    strings.Join(args, " "),
				IMDBID:  imdbID,
				Year:    year,
				Season:  season,
				Episode: episode,
			}
			var kinds []providers.Kind
			for _, name := range providerNames {
				kind, err := providers.ParseKind(name)
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}

			return ctx.withComponents(cmd.Context(), server.ComponentOptions{SkipTranslator: true}, func(_ *config.Config, comps *server.Components) error {
				query.Languages = language.NormalizeList(languages)
				if len(query.Languages) == 0 {
					query.Languages = comps.Catalog.SearchLanguages()
				}
				results, err := comps.Registry.Search(cmd.Context(), query, kinds)
				if err != nil {
					return err
				}
				if jsonOutput {
					if results == nil {
						results = []providers.Result{}
					}
					return writeJSON(cmd, results)
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No subtitles found")
					return nil
				}
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{
						r.Ref.String(),
						r.Language,
						strconv.Itoa(r.Downloads),
						yesNo(r.HearingImpaired),
						r.Release,
					})
				}
				return writeRows(cmd.OutOrStdout(),
					[]string{"Ref", "Lang", "Downloads", "HI", "Release"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "languages", "l", nil, "Language codes (default from catalog)")
	cmd.Flags().StringSliceVarP(&providerNames, "provider", "p", nil, "Restrict to providers (opensubtitles, subdl)")
	cmd.Flags().StringVar(&imdbID, "imdb", "", "IMDB id (tt1234567)")
	cmd.Flags().IntVar(&year, "year", 0, "Release year")
	cmd.Flags().IntVar(&season, "season", 0, "Season number")
	cmd.Flags().IntVar(&episode, "episode", 0, "Episode number")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}
