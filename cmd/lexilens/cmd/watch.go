package cmd

import (
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/lexilens/internal/adapter/daemon"
	"github.com/heartmarshall/lexilens/internal/app"
	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/engine"
	"github.com/heartmarshall/lexilens/internal/render"
)

const clearScreen = "\033[H\033[2J"

var watchFlags struct {
	tab    int
	width  int
	noSave bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run a display surface in this terminal",
	Long: `Watch connects to the daemon as the display surface. It first shows the
last selection of --tab (or of the frontmost tab), then every selection
the daemon accepts. Finished explanations are saved to the wordbook.

Closing watch marks the surface closed again.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchFlags.tab, "tab", 0, "tab whose last selection is replayed (default frontmost)")
	watchCmd.Flags().IntVar(&watchFlags.width, "width", 0, "panel width, 0 for unwrapped")
	watchCmd.Flags().BoolVar(&watchFlags.noSave, "no-save", false, "do not save results to the wordbook")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	var store *app.Store
	if !watchFlags.noSave {
		store, err = app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var mu sync.Mutex
	draw := func(s engine.State) {
		mu.Lock()
		defer mu.Unlock()
		printf(cmd, "%s%s\n", clearScreen, render.State(s, watchFlags.width))
	}

	surface, err := app.NewSurface(cfg, logger, store, draw)
	if err != nil {
		return err
	}
	defer surface.Engine.Close()

	conn, err := daemon.DialSurface(ctx, baseURL(cfg), logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	draw(engine.State{})
	err = surface.Controller.Serve(ctx, conn, domain.TabID(max(watchFlags.tab, 0)))
	if errors.Is(err, daemon.ErrClosed) {
		printf(cmd, "\ndaemon closed the connection\n")
		return nil
	}
	return err
}
