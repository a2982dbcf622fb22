// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/verte-zerg/pickwise/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Snapshot keys in the kv table.
const (
	keyHistory = "lotteryHistory"
	keyLength  = "comboLength"
)

const fallbackLength = 4

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidSnapshot is returned when the stored history does not describe a
// valid game: an unsupported length or draws that do not match it.
var ErrInvalidSnapshot = errors.New("invalid stored history")

// Store wraps SQLite access for the saved history and generated picks.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pick_batches (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			combo_length INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS picks (
			batch_id INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			digits TEXT NOT NULL,
			hot_pair INTEGER NOT NULL,
			overdue_sum INTEGER NOT NULL,
			strong_pos INTEGER NOT NULL,
			fallback INTEGER NOT NULL,
			PRIMARY KEY (batch_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pick_batches_created_at ON pick_batches(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot replaces the stored history and combination length.
func (s *Store) SaveSnapshot(ctx context.Context, snap model.Snapshot) (err error) {
	draws := snap.Draws
	if draws == nil {
		draws = []model.Combination{}
	}
	encoded, err := json.Marshal(draws)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	const upsert = `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err = tx.ExecContext(ctx, upsert, keyHistory, string(encoded)); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, upsert, keyLength, strconv.Itoa(snap.Length)); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadSnapshot returns the stored history. ok is false when nothing was saved.
// A snapshot that fails validation is reported as ErrInvalidSnapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (snap model.Snapshot, ok bool, err error) {
	raw, found, err := s.getValue(ctx, keyHistory)
	if err != nil || !found {
		return model.Snapshot{}, false, err
	}
	var draws []model.Combination
	if err := json.Unmarshal([]byte(raw), &draws); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("failed to decode history: %w", err)
	}

	length := fallbackLength
	rawLen, found, err := s.getValue(ctx, keyLength)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	if found {
		parsed, perr := strconv.Atoi(strings.TrimSpace(rawLen))
		if perr != nil {
			return model.Snapshot{}, false, fmt.Errorf("invalid stored length %q: %w", rawLen, perr)
		}
		length = parsed
	}
	snap = model.Snapshot{Length: length, Draws: draws}
	if err := snap.Validate(); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return snap, true, nil
}

func (s *Store) getValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// InsertPickBatch stores a batch of generated picks.
func (s *Store) InsertPickBatch(ctx context.Context, batch model.PickBatch) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO pick_batches (created_at, combo_length) VALUES (?, ?)`,
		batch.CreatedAt.Format(time.RFC3339Nano),
		batch.Length,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(batch.Picks) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO picks (batch_id, idx, digits, hot_pair, overdue_sum, strong_pos, fallback)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, p := range batch.Picks {
			if _, err = stmt.ExecContext(ctx, id, i, p.Combo.String(),
				boolInt(p.HotPair), boolInt(p.OverdueSum), boolInt(p.StrongPos), boolInt(p.Fallback)); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListPickBatches returns the most recent batches, oldest first. last <= 0
// returns every batch.
func (s *Store) ListPickBatches(ctx context.Context, last int) ([]model.PickBatch, error) {
	query := `SELECT id, created_at, combo_length FROM (
		SELECT id, created_at, combo_length FROM pick_batches
		ORDER BY id DESC
		LIMIT ?
	) ORDER BY id ASC`
	limit := last
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var batches []model.PickBatch
	for rows.Next() {
		var batch model.PickBatch
		var createdAt string
		if err := rows.Scan(&batch.ID, &createdAt, &batch.Length); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		batch.CreatedAt = parsed
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return batches, nil
	}

	picks, err := s.listPicks(ctx, batchIDs(batches))
	if err != nil {
		return nil, err
	}
	for i := range batches {
		batches[i].Picks = picks[batches[i].ID]
	}
	return batches, nil
}

func (s *Store) listPicks(ctx context.Context, ids []int64) (map[int64][]model.Pick, error) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT batch_id, digits, hot_pair, overdue_sum, strong_pos, fallback
		FROM picks
		WHERE batch_id IN (%s)
		ORDER BY batch_id ASC, idx ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64][]model.Pick{}
	for rows.Next() {
		var batchID int64
		var digits string
		var hot, overdue, strong, fallback int
		if err := rows.Scan(&batchID, &digits, &hot, &overdue, &strong, &fallback); err != nil {
			return nil, err
		}
		combo, err := parseDigits(digits)
		if err != nil {
			return nil, err
		}
		result[batchID] = append(result[batchID], model.Pick{
			Combo:      combo,
			HotPair:    hot != 0,
			OverdueSum: overdue != 0,
			StrongPos:  strong != 0,
			Fallback:   fallback != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func batchIDs(batches []model.PickBatch) []int64 {
	ids := make([]int64, len(batches))
	for i, b := range batches {
		ids[i] = b.ID
	}
	return ids
}

func parseDigits(digits string) (model.Combination, error) {
	combo := make(model.Combination, len(digits))
	for i := 0; i < len(digits); i++ {
		ch := digits[i]
		if ch < '0' || ch > '9' {
			return nil, fmt.Errorf("invalid stored pick %q", digits)
		}
		combo[i] = int(ch - '0')
	}
	return combo, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
