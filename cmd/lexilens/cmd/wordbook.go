package cmd

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/lexilens/internal/app"
	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/engine"
	"github.com/heartmarshall/lexilens/internal/render"
)

var wordbookFlags struct {
	favorites bool
	limit     int
	off       bool
}

var wordbookCmd = &cobra.Command{
	Use:   "wordbook [word]",
	Short: "List saved words, or show one word with its snapshots",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *app.Store) error {
			if len(args) == 1 {
				entry, err := store.Wordbook.Entry(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", render.Entries([]domain.WordbookEntry{*entry}))
				for _, snap := range entry.Snapshots {
					printf(cmd, "\n%s\n", render.State(engineState(snap), 0))
				}
				return nil
			}

			entries, err := store.Wordbook.Entries(cmd.Context(), domain.WordbookFilter{
				FavoritesOnly: wordbookFlags.favorites,
				Limit:         wordbookFlags.limit,
			})
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", render.Entries(entries))
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent lookups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(store *app.Store) error {
			items, err := store.Wordbook.History(cmd.Context(), wordbookFlags.limit)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", render.History(items))
			return nil
		})
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <word>",
	Short: "Mark a saved word as favorite (--off to unmark)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *app.Store) error {
			if err := store.Wordbook.SetFavorite(cmd.Context(), args[0], !wordbookFlags.off); err != nil {
				return err
			}
			if wordbookFlags.off {
				printf(cmd, "%s removed from favorites\n", args[0])
			} else {
				printf(cmd, "%s added to favorites\n", args[0])
			}
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply wordbook database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(*app.Store) error {
			printf(cmd, "wordbook database is up to date\n")
			return nil
		})
	},
}

func init() {
	wordbookCmd.Flags().BoolVar(&wordbookFlags.favorites, "favorites", false, "only favorite words")
	wordbookCmd.Flags().IntVar(&wordbookFlags.limit, "limit", 0, "maximum number of words, 0 for all")
	historyCmd.Flags().IntVar(&wordbookFlags.limit, "limit", 20, "maximum number of lookups")
	favoriteCmd.Flags().BoolVar(&wordbookFlags.off, "off", false, "remove from favorites")

	rootCmd.AddCommand(wordbookCmd, historyCmd, favoriteCmd, migrateCmd)
}

// withStore opens the wordbook (applying migrations) for the duration of fn.
func withStore(cmd *cobra.Command, fn func(*app.Store) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := app.OpenStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// engineState presents a stored snapshot the way a finished run looks.
func engineState(snap domain.WordbookSnapshot) engine.State {
	analysis := snap.Analysis
	return engine.State{
		Request: &domain.AnalysisRequest{Word: analysis.Headword, Context: snap.Context},
		Result:  &analysis,
	}
}
