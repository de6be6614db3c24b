package surface

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/engine"
)

type persister interface {
	Persist(ctx context.Context, req domain.AnalysisRequest, result *domain.AnalysisResult) (*domain.WordbookEntry, error)
}

// PersistOnComplete returns an engine completion callback that stores every
// finished analysis in the wordbook. Failures are logged and never reach
// the renderer.
func PersistOnComplete(log *slog.Logger, p persister) engine.CompletionFunc {
	log = log.With("service", "surface")
	return func(ctx context.Context, req domain.AnalysisRequest, result *domain.AnalysisResult) {
		if result == nil || !result.HasAnalysis() {
			log.DebugContext(ctx, "nothing to persist", slog.String("word", req.Word))
			return
		}
		entry, err := p.Persist(ctx, req, result)
		if err != nil {
			log.WarnContext(ctx, "analysis not persisted",
				slog.String("word", req.Word),
				slog.String("error", err.Error()),
			)
			return
		}
		log.DebugContext(ctx, "analysis saved to wordbook",
			slog.String("word", entry.Word),
			slog.Int("stage", entry.Stage),
		)
	}
}
