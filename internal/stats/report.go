package stats

import (
	"context"
	"errors"

	"github.com/verte-zerg/pickwise/internal/model"
	"github.com/verte-zerg/pickwise/internal/store"
)

// Report contains a stored history and its analysis.
type Report struct {
	Snapshot model.Snapshot
	Analysis model.Analysis
	// Saved is false when no usable history has been stored yet.
	Saved bool
	// Invalid holds the validation error when a stored history was rejected.
	Invalid error
}

// BuildReport loads the stored history and analyzes it. A missing or invalid
// snapshot is an empty history of fallbackLength, not an error.
func BuildReport(ctx context.Context, st *store.Store, fallbackLength, window int) (Report, error) {
	snap, ok, err := st.LoadSnapshot(ctx)
	var invalid error
	if errors.Is(err, store.ErrInvalidSnapshot) {
		invalid, err = err, nil
	}
	if err != nil {
		return Report{}, err
	}
	if !ok {
		snap = model.Snapshot{Length: fallbackLength}
	}
	return Report{
		Snapshot: snap,
		Analysis: Analyze(snap.Draws, snap.Length, window),
		Saved:    ok,
		Invalid:  invalid,
	}, nil
}
