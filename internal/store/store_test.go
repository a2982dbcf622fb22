package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/pickwise/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "pickwise.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestLoadSnapshotMissing(t *testing.T) {
	st := openTestStore(t)
	_, ok, err := st.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if ok {
		t.Fatalf("expected no snapshot in a fresh store")
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	want := model.Snapshot{
		Length: 3,
		Draws:  []model.Combination{{1, 2, 3}, {0, 0, 7}},
	}
	if err := st.SaveSnapshot(ctx, want); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	got, ok, err := st.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("load snapshot: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	// A second save replaces the first.
	replaced := model.Snapshot{Length: 5, Draws: []model.Combination{{9, 9, 9, 9, 9}}}
	if err := st.SaveSnapshot(ctx, replaced); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	got, _, err = st.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if diff := cmp.Diff(replaced, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotEncodesDigitArrays(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.SaveSnapshot(ctx, model.Snapshot{Length: 4, Draws: []model.Combination{{1, 2, 3, 4}}}); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	raw, ok, err := st.getValue(ctx, keyHistory)
	if err != nil || !ok {
		t.Fatalf("get history value: ok=%v err=%v", ok, err)
	}
	if raw != "[[1,2,3,4]]" {
		t.Fatalf("unexpected encoding: %s", raw)
	}
	rawLen, _, err := st.getValue(ctx, keyLength)
	if err != nil {
		t.Fatalf("get length value: %v", err)
	}
	if rawLen != "4" {
		t.Fatalf("unexpected length value: %s", rawLen)
	}
}

func TestSaveEmptySnapshot(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.SaveSnapshot(ctx, model.Snapshot{Length: 4}); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	got, ok, err := st.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("load snapshot: ok=%v err=%v", ok, err)
	}
	if len(got.Draws) != 0 || got.Length != 4 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestPickBatches(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		batch := model.PickBatch{
			CreatedAt: time.Unix(0, 0).Add(time.Duration(i) * time.Minute).UTC(),
			Length:    3,
			Picks: []model.Pick{
				{Combo: model.Combination{i, 1, 2}, HotPair: true},
				{Combo: model.Combination{0, 0, i}, OverdueSum: true, StrongPos: true},
			},
		}
		id, err := st.InsertPickBatch(ctx, batch)
		if err != nil {
			t.Fatalf("insert batch: %v", err)
		}
		ids = append(ids, id)
	}

	batches, err := st.ListPickBatches(ctx, 2)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].ID != ids[1] || batches[1].ID != ids[2] {
		t.Fatalf("unexpected batch ids: %+v", batches)
	}
	want := []model.Pick{
		{Combo: model.Combination{2, 1, 2}, HotPair: true},
		{Combo: model.Combination{0, 0, 2}, OverdueSum: true, StrongPos: true},
	}
	if diff := cmp.Diff(want, batches[1].Picks); diff != "" {
		t.Fatalf("picks mismatch (-want +got):\n%s", diff)
	}

	all, err := st.ListPickBatches(ctx, 0)
	if err != nil {
		t.Fatalf("list all batches: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(all))
	}
}

func TestLoadSnapshotRejectsInvalid(t *testing.T) {
	cases := map[string]model.Snapshot{
		"unsupported length": {Length: 7, Draws: []model.Combination{{1, 2, 3, 4, 5, 6, 7}}},
		"draw length":        {Length: 3, Draws: []model.Combination{{1, 2, 3, 4, 5}}},
		"digit range":        {Length: 3, Draws: []model.Combination{{12, 3, 4}}},
	}
	for name, snap := range cases {
		st := openTestStore(t)
		ctx := context.Background()
		if err := st.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("%s: save snapshot: %v", name, err)
		}
		_, ok, err := st.LoadSnapshot(ctx)
		if !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("%s: expected ErrInvalidSnapshot, got %v", name, err)
		}
		if ok {
			t.Fatalf("%s: expected ok=false for an invalid snapshot", name)
		}
	}
}
