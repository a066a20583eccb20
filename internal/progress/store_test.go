package progress

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store, path
}

func TestCluesRoundTrip(t *testing.T) {
	store, path := openTestStore(t)

	store.RecordClue("alpha", 3)
	store.RecordClue("alpha", 1)
	store.RecordClue("alpha", 3) // duplicate is ignored
	store.RecordClue("beta", 7)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	clues, err := reopened.Clues(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("Clues: %v", err)
	}
	if len(clues) != 2 || clues[0] != 1 || clues[1] != 3 {
		t.Fatalf("clues = %v, want [1 3]", clues)
	}

	other, err := reopened.Clues(context.Background(), "beta")
	if err != nil {
		t.Fatalf("Clues beta: %v", err)
	}
	if len(other) != 1 || other[0] != 7 {
		t.Fatalf("beta clues = %v, want [7]", other)
	}
}

func TestScoreAccumulates(t *testing.T) {
	store, path := openTestStore(t)

	store.AddScore(5)
	store.AddScore(3)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	total, err := reopened.Score(context.Background())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if total != 8 {
		t.Fatalf("score = %d, want 8", total)
	}
}

func TestVisitsCount(t *testing.T) {
	store, path := openTestStore(t)

	store.RecordVisit("hub")
	store.RecordVisit("drift")
	store.RecordVisit("drift")
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	ctx := context.Background()
	if n, err := reopened.Visits(ctx, "drift"); err != nil || n != 2 {
		t.Fatalf("drift visits = %d (%v), want 2", n, err)
	}
	if n, err := reopened.Visits(ctx, "hub"); err != nil || n != 1 {
		t.Fatalf("hub visits = %d (%v), want 1", n, err)
	}
	if n, err := reopened.Visits(ctx, "never"); err != nil || n != 0 {
		t.Fatalf("unknown visits = %d (%v), want 0", n, err)
	}
}

func TestConcurrentWritesDuringClose(t *testing.T) {
	store, _ := openTestStore(t)

	// Hammer the store from several goroutines while Close runs. Writes that
	// lose the race are dropped; none may panic on the closed channel.
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				store.AddScore(1)
				store.RecordVisit("drift")
			}
		}()
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()
}

func TestWritesAfterCloseAreDropped(t *testing.T) {
	store, path := openTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Must not panic or resurrect the channel.
	store.AddScore(100)

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if total, _ := reopened.Score(context.Background()); total != 0 {
		t.Fatalf("score = %d, want 0", total)
	}
}
