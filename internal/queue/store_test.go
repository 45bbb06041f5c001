package queue

import (
	"encoding/json"
	"errors"
	"testing"
)

func enqueueOne(t *testing.T, store *Store, kind Kind) string {
	t.Helper()
	ids := store.Enqueue(Spec{Kind: kind, Payload: json.RawMessage(`{}`)})
	if len(ids) != 1 {
		t.Fatalf("expected one id, got %d", len(ids))
	}
	return ids[0]
}

func TestEnqueuePreservesOrder(t *testing.T) {
	store := NewStore()
	a := enqueueOne(t, store, KindExportClip)
	b := enqueueOne(t, store, KindDownloadVideo)
	c := enqueueOne(t, store, KindImportBatch)

	tasks := store.List()
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, want := range []string{a, b, c} {
		if tasks[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, tasks[i].ID)
		}
	}
}

func TestClaimNextIsFIFO(t *testing.T) {
	store := NewStore()
	a := enqueueOne(t, store, KindExportClip)
	b := enqueueOne(t, store, KindExportClip)

	task, ok := store.ClaimNext()
	if !ok || task.ID != a {
		t.Fatalf("expected to claim %s, got %v ok=%v", a, task.ID, ok)
	}
	if task.Status != StatusProcessing {
		t.Fatalf("claimed task should be processing, got %s", task.Status)
	}
	if task.StartedAt == nil {
		t.Fatal("claimed task should have StartedAt set")
	}

	if err := store.MarkCompleted(a); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	task, ok = store.ClaimNext()
	if !ok || task.ID != b {
		t.Fatalf("expected to claim %s next, got %v", b, task.ID)
	}
	if _, ok := store.ClaimNext(); ok {
		t.Fatal("expected no further pending tasks")
	}
}

func TestTransitionsAreMonotonic(t *testing.T) {
	store := NewStore()
	id := enqueueOne(t, store, KindExportClip)

	if err := store.MarkCompleted(id); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing a pending task should fail, got %v", err)
	}

	if _, ok := store.ClaimNext(); !ok {
		t.Fatal("claim failed")
	}
	if err := store.MarkFailed(id, "boom"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if err := store.MarkCompleted(id); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("failed task must stay failed, got %v", err)
	}

	task, _ := store.Get(id)
	if task.Status != StatusFailed || task.Error != "boom" {
		t.Fatalf("unexpected terminal state: %+v", task)
	}
	if task.FinishedAt == nil {
		t.Fatal("terminal task should have FinishedAt set")
	}
}

func TestCancelPendingOnly(t *testing.T) {
	store := NewStore()
	id := enqueueOne(t, store, KindExportClip)

	canceled, err := store.Cancel(id)
	if err != nil || !canceled {
		t.Fatalf("cancel pending: canceled=%v err=%v", canceled, err)
	}
	if _, ok := store.Get(id); ok {
		t.Fatal("canceled task should be removed")
	}

	id = enqueueOne(t, store, KindExportClip)
	if _, ok := store.ClaimNext(); !ok {
		t.Fatal("claim failed")
	}
	canceled, err = store.Cancel(id)
	if err != nil || canceled {
		t.Fatalf("cancel processing should be a no-op, canceled=%v err=%v", canceled, err)
	}
	if task, ok := store.Get(id); !ok || task.Status != StatusProcessing {
		t.Fatalf("processing task should be untouched: %+v", task)
	}

	if _, err := store.Cancel("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClearTerminalKeepsActiveTasks(t *testing.T) {
	store := NewStore()
	done := enqueueOne(t, store, KindExportClip)
	failed := enqueueOne(t, store, KindExportClip)
	pending := enqueueOne(t, store, KindExportClip)

	store.ClaimNext()
	store.MarkCompleted(done)
	store.ClaimNext()
	store.MarkFailed(failed, "boom")

	if cleared := store.ClearTerminal(); cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", cleared)
	}
	tasks := store.List()
	if len(tasks) != 1 || tasks[0].ID != pending {
		t.Fatalf("expected only pending task to survive, got %+v", tasks)
	}
}

func TestSetProgressClampsAndIgnoresTerminal(t *testing.T) {
	store := NewStore()
	id := enqueueOne(t, store, KindDownloadVideo)
	store.ClaimNext()

	if err := store.SetProgress(id, 150, "almost"); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	task, _ := store.Get(id)
	if task.Progress != 100 || task.Message != "almost" {
		t.Fatalf("expected clamped progress, got %+v", task)
	}
	if err := store.SetProgress(id, -5, ""); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if task, _ = store.Get(id); task.Progress != 0 {
		t.Fatalf("expected clamp to zero, got %v", task.Progress)
	}

	store.MarkFailed(id, "boom")
	if err := store.SetProgress(id, 50, "late update"); err != nil {
		t.Fatalf("late SetProgress should be ignored, got %v", err)
	}
	task, _ = store.Get(id)
	if task.Progress != 0 || task.Error != "boom" {
		t.Fatalf("terminal task mutated by late progress: %+v", task)
	}
}

func TestCountsAndCurrent(t *testing.T) {
	store := NewStore()
	done := enqueueOne(t, store, KindExportClip)
	enqueueOne(t, store, KindExportClip)
	enqueueOne(t, store, KindExportClip)

	store.ClaimNext()
	store.MarkCompleted(done)
	claimed, _ := store.ClaimNext()

	counts := store.Counts()
	if counts.Pending != 1 || counts.Processing != 1 || counts.Completed != 1 || counts.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts.Total() != 3 {
		t.Fatalf("expected total 3, got %d", counts.Total())
	}

	current, ok := store.Current()
	if !ok || current.ID != claimed.ID {
		t.Fatalf("expected current %s, got %+v ok=%v", claimed.ID, current, ok)
	}
}

func TestWatchObservesEveryMutationInOrder(t *testing.T) {
	store := NewStore()
	var events []EventType
	store.Watch(func(event Event) {
		events = append(events, event.Type)
	})

	id := enqueueOne(t, store, KindExportClip)
	store.ClaimNext()
	store.SetProgress(id, 40, "working")
	store.MarkCompleted(id)
	store.ClearTerminal()

	want := []EventType{EventEnqueued, EventStarted, EventProgress, EventCompleted, EventCleared}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(events), events)
	}
	for i, eventType := range want {
		if events[i] != eventType {
			t.Fatalf("event %d: expected %s, got %s", i, eventType, events[i])
		}
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := NewStore()
	done := enqueueOne(t, store, KindExportClip)
	enqueueOne(t, store, KindExportClip)

	store.ClaimNext()
	store.MarkCompleted(done)

	pending := store.List(StatusPending)
	if len(pending) != 1 || pending[0].Status != StatusPending {
		t.Fatalf("unexpected pending listing: %+v", pending)
	}
	terminal := store.List(StatusCompleted, StatusFailed)
	if len(terminal) != 1 || terminal[0].ID != done {
		t.Fatalf("unexpected terminal listing: %+v", terminal)
	}
}

func TestParseKindAndStatus(t *testing.T) {
	if kind, ok := ParseKind(" Export-Clip "); !ok || kind != KindExportClip {
		t.Fatalf("ParseKind failed: %v %v", kind, ok)
	}
	if _, ok := ParseKind("reticulate"); ok {
		t.Fatal("unknown kind should not parse")
	}
	if status, ok := ParseStatus("PROCESSING"); !ok || status != StatusProcessing {
		t.Fatalf("ParseStatus failed: %v %v", status, ok)
	}
	if _, ok := ParseStatus(""); ok {
		t.Fatal("empty status should not parse")
	}
}
