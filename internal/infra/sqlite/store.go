package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aliskhannn/bsl-quest/internal/domain/entities"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    chat_id INTEGER NOT NULL,
    display_name TEXT NOT NULL DEFAULT 'Anonymous',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_focus (
    user_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    item_id TEXT NOT NULL,
    PRIMARY KEY (user_id, category, item_id)
);

CREATE TABLE IF NOT EXISTS mastery_counters (
    user_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    item_id TEXT NOT NULL,
    correct_count INTEGER NOT NULL CHECK (correct_count BETWEEN 0 AND 3),
    PRIMARY KEY (user_id, category, item_id)
);

CREATE TABLE IF NOT EXISTS score_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 10),
    total INTEGER NOT NULL DEFAULT 10,
    recorded_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_score_records_user_category
    ON score_records (user_id, category, id);

CREATE TABLE IF NOT EXISTS user_xp (
    user_id INTEGER PRIMARY KEY,
    xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
    display_name TEXT NOT NULL DEFAULT 'Anonymous',
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS learning_progress (
    user_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    learned_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, category)
);
`

// Store keeps all learner state in a single SQLite file. Timestamps are
// stored as Unix nanoseconds.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database at path and applies the schema.
func New(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; the write queue runs several workers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================================================
// Mastery
// ============================================================================

func (s *Store) GetFocusSet(ctx context.Context, userID int64, category entities.Category) (entities.FocusSet, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_id FROM quiz_focus WHERE user_id = ? AND category = ?",
		userID, string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("query focus set: %w", err)
	}
	defer rows.Close()

	focus := entities.NewFocusSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan focus set: %w", err)
		}
		focus.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate focus set: %w", err)
	}

	return focus, nil
}

func (s *Store) PutFocusSet(ctx context.Context, userID int64, category entities.Category, focus entities.FocusSet) error {
	return s.withinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM quiz_focus WHERE user_id = ? AND category = ?",
			userID, string(category),
		); err != nil {
			return fmt.Errorf("clear focus set: %w", err)
		}

		for _, id := range focus.IDs() {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO quiz_focus (user_id, category, item_id) VALUES (?, ?, ?)",
				userID, string(category), id,
			); err != nil {
				return fmt.Errorf("insert focus item: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) GetMasteryCounters(ctx context.Context, userID int64, category entities.Category) (entities.MasteryCounters, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_id, correct_count FROM mastery_counters WHERE user_id = ? AND category = ?",
		userID, string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("query mastery counters: %w", err)
	}
	defer rows.Close()

	counters := entities.MasteryCounters{}
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan mastery counter: %w", err)
		}
		counters[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mastery counters: %w", err)
	}

	return counters, nil
}

func (s *Store) PutMasteryCounters(ctx context.Context, userID int64, category entities.Category, counters entities.MasteryCounters) error {
	return s.withinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM mastery_counters WHERE user_id = ? AND category = ?",
			userID, string(category),
		); err != nil {
			return fmt.Errorf("clear mastery counters: %w", err)
		}

		for id := range counters {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO mastery_counters (user_id, category, item_id, correct_count) VALUES (?, ?, ?, ?)",
				userID, string(category), id, counters.Get(id),
			); err != nil {
				return fmt.Errorf("insert mastery counter: %w", err)
			}
		}
		return nil
	})
}

// ============================================================================
// Scores and XP
// ============================================================================

func (s *Store) AppendScoreRecord(ctx context.Context, userID int64, category entities.Category, record *entities.ScoreRecord) error {
	ts := s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO score_records (user_id, category, score, total, recorded_at) VALUES (?, ?, ?, ?, ?)",
		userID, string(category), record.Score, record.Total, ts.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append score record: %w", err)
	}

	record.Timestamp = ts
	return nil
}

func (s *Store) ListScoreRecords(ctx context.Context, userID int64, category entities.Category) ([]entities.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT score, total, recorded_at FROM score_records WHERE user_id = ? AND category = ? ORDER BY id",
		userID, string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("query score records: %w", err)
	}
	defer rows.Close()

	var records []entities.ScoreRecord
	for rows.Next() {
		var (
			rec entities.ScoreRecord
			ts  int64
		)
		if err := rows.Scan(&rec.Score, &rec.Total, &ts); err != nil {
			return nil, fmt.Errorf("scan score record: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score records: %w", err)
	}

	return records, nil
}

func (s *Store) ResetScores(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM score_records WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("delete score_records: %w", err)
	}
	return nil
}

func (s *Store) GetXP(ctx context.Context, userID int64) (int, error) {
	var xp int
	err := s.db.QueryRowContext(ctx, "SELECT xp FROM user_xp WHERE user_id = ?", userID).Scan(&xp)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get xp: %w", err)
	}
	return xp, nil
}

// AddXP increments XP in a single upsert and returns the new total.
func (s *Store) AddXP(ctx context.Context, userID int64, displayName string, delta int) (int, error) {
	query := `
		INSERT INTO user_xp (user_id, xp, display_name, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			xp = xp + excluded.xp,
			display_name = excluded.display_name,
			updated_at = excluded.updated_at
		RETURNING xp
	`

	var total int
	err := s.db.QueryRowContext(ctx, query, userID, delta, displayName, s.now().UTC().UnixNano()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("add xp: %w", err)
	}
	return total, nil
}

// Leaderboard returns the top limit users by XP; limit <= 0 returns all.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]entities.UserXP, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, xp, display_name FROM user_xp ORDER BY xp DESC, display_name, user_id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var top []entities.UserXP
	for rows.Next() {
		var u entities.UserXP
		if err := rows.Scan(&u.UserID, &u.XP, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		top = append(top, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}

	return top, nil
}

// ============================================================================
// Users, learning progress and reminders
// ============================================================================

func (s *Store) SaveUser(ctx context.Context, user *entities.User) (bool, error) {
	var created bool

	err := s.withinTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", user.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check user existence: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, chat_id, display_name, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				chat_id = excluded.chat_id,
				display_name = excluded.display_name`,
			user.ID, user.ChatID, user.DisplayName, s.now().UTC().UnixNano(),
		); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		created = !exists
		return nil
	})

	return created, err
}

func (s *Store) GetLearningProgress(ctx context.Context, userID int64) (*entities.LearningProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, learned_at FROM learning_progress WHERE user_id = ?", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query learning progress: %w", err)
	}
	defer rows.Close()

	p := entities.NewLearningProgress(userID)
	for rows.Next() {
		var (
			category string
			ts       int64
		)
		if err := rows.Scan(&category, &ts); err != nil {
			return nil, fmt.Errorf("scan learning progress: %w", err)
		}
		p.Learned[entities.Category(category)] = time.Unix(0, ts).UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learning progress: %w", err)
	}

	return p, nil
}

func (s *Store) MarkLearned(ctx context.Context, userID int64, category entities.Category, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO learning_progress (user_id, category, learned_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		userID, string(category), at.UTC().UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("mark learned: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark learned: %w", err)
	}
	return n == 1, nil
}

func (s *Store) ListFocusReminders(ctx context.Context) ([]entities.FocusReminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.user_id, u.chat_id, f.category, COUNT(*)
		FROM quiz_focus f
		JOIN users u ON u.id = f.user_id
		GROUP BY f.user_id, u.chat_id, f.category
		ORDER BY f.user_id, f.category`,
	)
	if err != nil {
		return nil, fmt.Errorf("query focus reminders: %w", err)
	}
	defer rows.Close()

	var out []entities.FocusReminder
	for rows.Next() {
		var (
			rem      entities.FocusReminder
			category string
		)
		if err := rows.Scan(&rem.UserID, &rem.ChatID, &category, &rem.FocusCount); err != nil {
			return nil, fmt.Errorf("scan focus reminder: %w", err)
		}
		rem.Category = entities.Category(category)
		out = append(out, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate focus reminders: %w", err)
	}

	return out, nil
}

func (s *Store) withinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
