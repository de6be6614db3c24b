package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/lexilens/internal/app"
	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/emitter"
	"github.com/heartmarshall/lexilens/internal/engine"
	"github.com/heartmarshall/lexilens/internal/render"
)

var analyzeFlags struct {
	context    string
	url        string
	layers     string
	mistakes   bool
	lexicalMap bool
	noSave     bool
	live       bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <word>",
	Short: "Analyze a word directly, without the daemon",
	Long: `Analyze streams the layered explanation of a word and prints it.

Without --context the word itself is used as its context. The page
category is inferred from --url.

Example:
  lexilens analyze precarious --context "The peace remains precarious." --url https://www.bbc.com/news/1
  lexilens analyze ubiquitous --mistakes --live`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.context, "context", "", "sentence the word was found in")
	f.StringVar(&analyzeFlags.url, "url", "", "source page URL")
	f.StringVar(&analyzeFlags.layers, "layers", "", "comma-separated layers to stream (2,3,4)")
	f.BoolVar(&analyzeFlags.mistakes, "mistakes", false, "fetch common mistakes after the stream")
	f.BoolVar(&analyzeFlags.lexicalMap, "lexical-map", false, "fetch the full lexical map after the stream")
	f.BoolVar(&analyzeFlags.noSave, "no-save", false, "do not save the result to the wordbook")
	f.BoolVar(&analyzeFlags.live, "live", false, "redraw while the explanation streams")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if analyzeFlags.layers != "" {
		layers, err := parseLayers(analyzeFlags.layers)
		if err != nil {
			return err
		}
		cfg.Analysis.DefaultLayers = layers
	}

	var store *app.Store
	if !analyzeFlags.noSave {
		store, err = app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var onUpdate engine.UpdateFunc
	if analyzeFlags.live {
		onUpdate = func(s engine.State) {
			printf(cmd, "%s%s\n", clearScreen, render.State(s, 0))
		}
	}

	surface, err := app.NewSurface(cfg, logger, store, onUpdate)
	if err != nil {
		return err
	}
	defer surface.Engine.Close()

	word := strings.Join(args, " ")
	evt := domain.SelectionEvent{
		Word:         word,
		Context:      analyzeFlags.context,
		PageCategory: emitter.DetectPageCategory(analyzeFlags.url),
		SourceURL:    analyzeFlags.url,
		Strength:     domain.InteractionStrong,
	}
	if strings.TrimSpace(evt.Context) == "" {
		evt.Context = word
	}

	run, _, err := surface.Controller.Show(ctx, evt)
	if err != nil {
		return err
	}
	if run != nil {
		if err := run.Wait(ctx); err != nil {
			return err
		}
	}

	if analyzeFlags.mistakes {
		if err := surface.Engine.RequestMistakes(ctx); err != nil {
			logger.Warn("common mistakes unavailable", "error", err.Error())
		}
	}
	if analyzeFlags.lexicalMap {
		if err := surface.Engine.RequestLexicalMap(ctx); err != nil {
			logger.Warn("lexical map unavailable", "error", err.Error())
		}
	}

	state := surface.Engine.Snapshot()
	if !analyzeFlags.live || analyzeFlags.mistakes || analyzeFlags.lexicalMap {
		printf(cmd, "%s\n", render.State(state, 0))
	}
	if state.Error != "" {
		return errors.New(state.Error)
	}
	return nil
}

func parseLayers(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < domain.LayerContexts || n > domain.LayerLexicalMap {
			return nil, fmt.Errorf("invalid layer %q: only 2, 3 and 4 can be requested", part)
		}
		out = append(out, n)
	}
	return out, nil
}
