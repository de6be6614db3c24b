package wordbook

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexilens/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type deps struct {
	entries   *entryRepoMock
	snapshots *snapshotRepoMock
	history   *historyRepoMock
	tx        *txManagerMock
}

// happyDeps returns mocks that accept every write.
func happyDeps() deps {
	return deps{
		entries: &entryRepoMock{
			GetByWordFunc: func(context.Context, string) (*domain.WordbookEntry, error) {
				return nil, domain.ErrNotFound
			},
			CreateFunc: func(_ context.Context, e *domain.WordbookEntry) (*domain.WordbookEntry, error) {
				return e, nil
			},
			UpdateProgressFunc: func(context.Context, uuid.UUID, int, time.Time) error { return nil },
		},
		snapshots: &snapshotRepoMock{
			CreateSnapshotFunc: func(context.Context, *domain.WordbookSnapshot) error { return nil },
			TrimSnapshotsFunc:  func(context.Context, uuid.UUID, int) (int64, error) { return 0, nil },
		},
		history: &historyRepoMock{
			AppendHistoryFunc: func(context.Context, *domain.LearningHistoryEntry) error { return nil },
		},
		tx: &txManagerMock{},
	}
}

func newTestService(t *testing.T, d deps, opts Options) *Service {
	t.Helper()
	svc := NewService(slog.Default(), d.entries, d.snapshots, d.history, d.tx, opts)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func completedResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Headword: "Precarious",
		Layer1:   &domain.BehaviorPattern{Text: "If something is precarious..."},
	}
}

func testRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Word:         "  Precarious ",
		Context:      " The situation remains precarious. ",
		PageCategory: domain.PageCategoryNews,
		SourceURL:    "https://www.bbc.com/news/1",
	}
}

// ---------------------------------------------------------------------------
// Persist
// ---------------------------------------------------------------------------

func TestPersist_NewEntry(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	svc := newTestService(t, d, Options{MaxSnapshots: 3})

	entry, err := svc.Persist(context.Background(), testRequest(), completedResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Word != "Precarious" || entry.WordNormalized != "precarious" {
		t.Errorf("entry word = %q / %q", entry.Word, entry.WordNormalized)
	}
	if entry.Stage != domain.MinStage {
		t.Errorf("stage = %d, want %d", entry.Stage, domain.MinStage)
	}
	if entry.LastReviewedAt == nil || !entry.LastReviewedAt.Equal(fixedNow) {
		t.Errorf("last reviewed = %v", entry.LastReviewedAt)
	}
	if d.tx.Calls() != 1 {
		t.Errorf("RunInTx calls = %d, want 1", d.tx.Calls())
	}

	snaps := d.snapshots.CreateSnapshotCalls()
	if len(snaps) != 1 {
		t.Fatalf("CreateSnapshot calls = %d, want 1", len(snaps))
	}
	if snaps[0].EntryID != entry.ID || snaps[0].Context != "The situation remains precarious." || snaps[0].PageCategory != domain.PageCategoryNews {
		t.Errorf("snapshot = %+v", snaps[0])
	}
	if snaps[0].Analysis.Layer1 == nil {
		t.Error("snapshot must carry the analysis")
	}

	trims := d.snapshots.TrimSnapshotsCalls()
	if len(trims) != 1 || trims[0].Keep != 3 {
		t.Errorf("TrimSnapshots calls = %+v, want keep=3", trims)
	}

	hist := d.history.AppendHistoryCalls()
	if len(hist) != 1 || hist[0].Word != "Precarious" {
		t.Errorf("AppendHistory calls = %+v", hist)
	}
}

func TestPersist_ExistingEntryAdvancesStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stage int
		want  int
	}{
		{"first exposure again", 1, 2},
		{"middle", 3, 4},
		{"capped", domain.MaxStage, domain.MaxStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id := uuid.New()
			d := happyDeps()
			d.entries.GetByWordFunc = func(_ context.Context, w string) (*domain.WordbookEntry, error) {
				if w != "precarious" {
					t.Errorf("GetByWord(%q), want normalized word", w)
				}
				return &domain.WordbookEntry{ID: id, Word: "precarious", WordNormalized: "precarious", Stage: tt.stage}, nil
			}
			svc := newTestService(t, d, Options{})

			entry, err := svc.Persist(context.Background(), testRequest(), completedResult())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if entry.Stage != tt.want {
				t.Errorf("stage = %d, want %d", entry.Stage, tt.want)
			}
			calls := d.entries.UpdateProgressCalls()
			if len(calls) != 1 || calls[0].ID != id || calls[0].Stage != tt.want {
				t.Errorf("UpdateProgress calls = %+v", calls)
			}
			if len(d.entries.CreateCalls()) != 0 {
				t.Error("Create must not be called for an existing entry")
			}
			if trims := d.snapshots.TrimSnapshotsCalls(); len(trims) != 1 || trims[0].Keep != DefaultMaxSnapshots {
				t.Errorf("TrimSnapshots calls = %+v, want default keep", trims)
			}
		})
	}
}

func TestPersist_RejectsEmptyResult(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	svc := newTestService(t, d, Options{})

	_, err := svc.Persist(context.Background(), testRequest(), &domain.AnalysisResult{Headword: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if d.tx.Calls() != 0 {
		t.Error("no transaction should be opened")
	}
}

func TestPersist_RejectsBlankWord(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, happyDeps(), Options{})
	req := testRequest()
	req.Word = "   "

	if _, err := svc.Persist(context.Background(), req, completedResult()); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestPersist_SnapshotFailureAborts(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	boom := errors.New("disk full")
	d.snapshots.CreateSnapshotFunc = func(context.Context, *domain.WordbookSnapshot) error { return boom }
	svc := newTestService(t, d, Options{})

	_, err := svc.Persist(context.Background(), testRequest(), completedResult())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if len(d.history.AppendHistoryCalls()) != 0 {
		t.Error("history must not be written after a failed snapshot")
	}
}

func TestPersist_GetEntryFailure(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.entries.GetByWordFunc = func(context.Context, string) (*domain.WordbookEntry, error) {
		return nil, errors.New("connection reset")
	}
	svc := newTestService(t, d, Options{})

	if _, err := svc.Persist(context.Background(), testRequest(), completedResult()); err == nil {
		t.Fatal("expected error")
	}
	if len(d.entries.CreateCalls()) != 0 {
		t.Error("Create must not be called when lookup fails")
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestRecentVocabulary_UsesConfiguredLimit(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.history.RecentWordsFunc = func(context.Context, int) ([]string, error) {
		return []string{"precarious", "tenuous"}, nil
	}
	svc := newTestService(t, d, Options{RecentVocabularyLimit: 7})

	words, err := svc.RecentVocabulary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 2 {
		t.Errorf("words = %v", words)
	}
	if calls := d.history.RecentWordsCalls(); len(calls) != 1 || calls[0] != 7 {
		t.Errorf("RecentWords calls = %v, want [7]", calls)
	}
}

func TestFavoriteWords(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.entries.ListFunc = func(_ context.Context, f domain.WordbookFilter) ([]domain.WordbookEntry, error) {
		return []domain.WordbookEntry{{Word: "Serendipity"}, {Word: "ubiquitous"}}, nil
	}
	svc := newTestService(t, d, Options{})

	words, err := svc.FavoriteWords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 2 || words[0] != "Serendipity" {
		t.Errorf("words = %v", words)
	}
	if calls := d.entries.ListCalls(); len(calls) != 1 || !calls[0].FavoritesOnly {
		t.Errorf("List calls = %+v, want favorites only", calls)
	}
}

func TestSetFavorite(t *testing.T) {
	t.Parallel()

	t.Run("normalizes word", func(t *testing.T) {
		t.Parallel()
		d := happyDeps()
		d.entries.SetFavoriteFunc = func(context.Context, string, bool) error { return nil }
		svc := newTestService(t, d, Options{})

		if err := svc.SetFavorite(context.Background(), "  Serendipity ", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		calls := d.entries.SetFavoriteCalls()
		if len(calls) != 1 || calls[0].Word != "serendipity" || !calls[0].Favorite {
			t.Errorf("SetFavorite calls = %+v", calls)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		d := happyDeps()
		d.entries.SetFavoriteFunc = func(context.Context, string, bool) error { return domain.ErrNotFound }
		svc := newTestService(t, d, Options{})

		if err := svc.SetFavorite(context.Background(), "unknown", true); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("blank word", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t, happyDeps(), Options{})
		if err := svc.SetFavorite(context.Background(), " ", true); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})
}

func TestHistory_ClampsLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, 50},
		{"within range", 10, 10},
		{"above max", 500, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := happyDeps()
			d.history.ListHistoryFunc = func(context.Context, int) ([]domain.LearningHistoryEntry, error) {
				return nil, nil
			}
			svc := newTestService(t, d, Options{HistoryLimit: 50})

			if _, err := svc.History(context.Background(), tt.limit); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calls := d.history.ListHistoryCalls(); len(calls) != 1 || calls[0] != tt.want {
				t.Errorf("ListHistory calls = %v, want [%d]", calls, tt.want)
			}
		})
	}
}

func TestEntry_LoadsSnapshots(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	d := happyDeps()
	d.entries.GetByWordFunc = func(context.Context, string) (*domain.WordbookEntry, error) {
		return &domain.WordbookEntry{ID: id, Word: "tenuous"}, nil
	}
	d.snapshots.ListSnapshotsFunc = func(_ context.Context, entryID uuid.UUID) ([]domain.WordbookSnapshot, error) {
		if entryID != id {
			t.Errorf("ListSnapshots(%v), want %v", entryID, id)
		}
		return []domain.WordbookSnapshot{{EntryID: id}, {EntryID: id}}, nil
	}
	svc := newTestService(t, d, Options{})

	entry, err := svc.Entry(context.Background(), "Tenuous")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entry.Snapshots) != 2 {
		t.Errorf("snapshots = %d, want 2", len(entry.Snapshots))
	}
}

func TestEntry_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, happyDeps(), Options{})
	if _, err := svc.Entry(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// CleanupSnapshots
// ---------------------------------------------------------------------------

func TestCleanupSnapshots(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	d.snapshots.DeleteSnapshotsBeforeFunc = func(context.Context, time.Time) (int64, error) { return 4, nil }
	svc := newTestService(t, d, Options{SnapshotRetention: 48 * time.Hour})

	n, err := svc.CleanupSnapshots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("deleted = %d, want 4", n)
	}
	calls := d.snapshots.DeleteSnapshotsBeforeCalls()
	if len(calls) != 1 || !calls[0].Equal(fixedNow.Add(-48*time.Hour)) {
		t.Errorf("DeleteSnapshotsBefore calls = %v", calls)
	}
}

func TestCleanupSnapshots_ZeroRetentionKeepsAll(t *testing.T) {
	t.Parallel()

	d := happyDeps()
	svc := newTestService(t, d, Options{})

	n, err := svc.CleanupSnapshots(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("CleanupSnapshots = %d, %v", n, err)
	}
	if len(d.snapshots.DeleteSnapshotsBeforeCalls()) != 0 {
		t.Error("no delete expected with zero retention")
	}
}
