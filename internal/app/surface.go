package app

import (
	"log/slog"

	"github.com/heartmarshall/lexilens/internal/adapter/provider/analysis"
	"github.com/heartmarshall/lexilens/internal/adapter/provider/freedict"
	"github.com/heartmarshall/lexilens/internal/config"
	"github.com/heartmarshall/lexilens/internal/engine"
	"github.com/heartmarshall/lexilens/internal/surface"
)

// Surface is a display surface: the analysis engine and the controller that
// feeds it.
type Surface struct {
	Engine     *engine.Engine
	Controller *surface.Controller
}

// NewSurface wires the analysis client, the pronunciation source, the engine
// and the surface controller. A nil store runs without personalization and
// without persistence.
func NewSurface(cfg *config.Config, logger *slog.Logger, store *Store, onUpdate engine.UpdateFunc) (*Surface, error) {
	profile, err := cfg.Profile.LearnerProfile()
	if err != nil {
		return nil, err
	}

	client := analysis.NewClient(analysis.Config{
		BaseURL:        cfg.Analysis.BaseURL,
		StreamTimeout:  cfg.Analysis.StreamTimeout,
		RequestTimeout: cfg.Analysis.RequestTimeout,
	}, logger)

	opts := engine.Options{OnUpdate: onUpdate}
	var ctrl *surface.Controller
	if store != nil {
		opts.OnComplete = surface.PersistOnComplete(logger, store.Wordbook)
	}
	eng := engine.New(logger, client, newPronouncer(cfg.Analysis, client, logger), opts)

	ctrlOpts := surface.Options{Profile: profile, Layers: cfg.Analysis.DefaultLayers}
	if store != nil {
		ctrl = surface.New(logger, eng, store.Wordbook, ctrlOpts)
	} else {
		ctrl = surface.New(logger, eng, nil, ctrlOpts)
	}

	return &Surface{Engine: eng, Controller: ctrl}, nil
}

func newPronouncer(cfg config.AnalysisConfig, client *analysis.Client, logger *slog.Logger) engine.Pronouncer {
	if cfg.PronunciationSource == config.PronunciationFreeDict {
		return freedict.NewProviderWithURL(cfg.FreeDictURL, logger)
	}
	return client
}
