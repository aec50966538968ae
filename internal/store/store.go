// Package store keeps the game transcript and phase snapshots in sqlite so a
// session can be read back after the in-memory log has been reset.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"werewolf-solo/internal/applog"
	"werewolf-solo/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS message (
	session_id TEXT NOT NULL,
	id TEXT NOT NULL,
	player_id INTEGER NOT NULL,
	player_name TEXT NOT NULL,
	content TEXT NOT NULL,
	kind TEXT NOT NULL,
	recipient_id INTEGER,
	created_at TIMESTAMP NOT NULL,
	FOREIGN KEY (session_id) REFERENCES session(id),
	UNIQUE(session_id, id)
);
CREATE TABLE IF NOT EXISTS game_state (
	session_id TEXT NOT NULL,
	phase TEXT NOT NULL,
	day_number INTEGER NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL,
	FOREIGN KEY (session_id) REFERENCES session(id)
);
CREATE INDEX IF NOT EXISTS idx_message_session ON message(session_id, recipient_id);
`

// Session is one dealt game, from initialize or reset until the next one.
type Session struct {
	ID        string    `db:"id"`
	StartedAt time.Time `db:"started_at"`
	Messages  int       `db:"messages"`
}

type messageRow struct {
	SessionID   string    `db:"session_id"`
	ID          string    `db:"id"`
	PlayerID    int64     `db:"player_id"`
	PlayerName  string    `db:"player_name"`
	Content     string    `db:"content"`
	Kind        string    `db:"kind"`
	RecipientID *int64    `db:"recipient_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r messageRow) message() game.Message {
	return game.Message{
		ID:          r.ID,
		PlayerID:    r.PlayerID,
		PlayerName:  r.PlayerName,
		Content:     r.Content,
		Timestamp:   r.CreatedAt,
		Kind:        game.MessageKind(r.Kind),
		RecipientID: r.RecipientID,
	}
}

// Store is a game.Sink backed by sqlite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time

	mu      sync.Mutex
	session string
	last    *game.State // last recorded snapshot of the session
}

var _ game.Sink = (*Store)(nil)

// Open connects to dsn, creates the schema and begins a first session.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dsn, err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.newSession(); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("Store initialized (%s)", dsn)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) newSession() error {
	id := uuid.NewString()
	if _, err := s.db.Exec(`INSERT INTO session (id, started_at) VALUES (?, ?)`, id, s.now()); err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	s.mu.Lock()
	s.session = id
	s.last = nil
	s.mu.Unlock()
	return nil
}

// CurrentSession returns the id messages are currently recorded under.
func (s *Store) CurrentSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// MessageAdded records m under the current session.
func (s *Store) MessageAdded(m game.Message) {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO message
			(session_id, id, player_id, player_name, content, kind, recipient_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CurrentSession(), m.ID, m.PlayerID, m.PlayerName, m.Content, string(m.Kind), m.RecipientID, m.Timestamp)
	if err != nil {
		applog.Error("store: insert message", err)
	}
}

// LogCleared closes the current session and starts a new one.
func (s *Store) LogCleared() {
	if err := s.newSession(); err != nil {
		applog.Error("store: LogCleared", err)
	}
}

// StateChanged records a snapshot whenever the phase, day or winner moves.
func (s *Store) StateChanged(st game.State) {
	s.mu.Lock()
	session := s.session
	last := s.last
	if last != nil && last.Phase == st.Phase && last.DayNumber == st.DayNumber && last.Winner == st.Winner {
		s.mu.Unlock()
		return
	}
	snap := st.Clone()
	s.last = &snap
	s.mu.Unlock()

	data, err := json.Marshal(st)
	if err != nil {
		applog.Error("store: marshal state", err)
		return
	}
	_, err = s.db.Exec(`
		INSERT INTO game_state (session_id, phase, day_number, winner, state, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session, string(st.Phase), st.DayNumber, string(st.Winner), string(data), s.now())
	if err != nil {
		applog.Error("store: insert state", err)
	}
}

// Sessions lists every session, oldest first, with its message count.
func (s *Store) Sessions() ([]Session, error) {
	var sessions []Session
	err := s.db.Select(&sessions, `
		SELECT s.id as id,
			s.started_at as started_at,
			COUNT(m.id) as messages
		FROM session s
			LEFT JOIN message m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.rowid ASC`)
	return sessions, err
}

// Messages returns the full transcript of a session, private lines included.
func (s *Store) Messages(session string) ([]game.Message, error) {
	var rows []messageRow
	if err := s.db.Select(&rows, `
		SELECT session_id, id, player_id, player_name, content, kind, recipient_id, created_at
		FROM message
		WHERE session_id = ?
		ORDER BY rowid ASC`, session); err != nil {
		return nil, err
	}
	return toMessages(rows), nil
}

// MessagesFor returns the transcript of a session as viewer saw it.
func (s *Store) MessagesFor(session string, viewer int64) ([]game.Message, error) {
	var rows []messageRow
	if err := s.db.Select(&rows, `
		SELECT session_id, id, player_id, player_name, content, kind, recipient_id, created_at
		FROM message
		WHERE session_id = ? AND (recipient_id IS NULL OR recipient_id = ?)
		ORDER BY rowid ASC`, session, viewer); err != nil {
		return nil, err
	}
	return toMessages(rows), nil
}

func toMessages(rows []messageRow) []game.Message {
	out := make([]game.Message, len(rows))
	for i, r := range rows {
		out[i] = r.message()
	}
	return out
}

// LatestState returns the last snapshot recorded for session.
func (s *Store) LatestState(session string) (game.State, error) {
	var data string
	if err := s.db.Get(&data, `
		SELECT state FROM game_state
		WHERE session_id = ?
		ORDER BY rowid DESC
		LIMIT 1`, session); err != nil {
		return game.State{}, err
	}
	var st game.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return game.State{}, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}

// Dump writes every table to w.
func (s *Store) Dump(w io.Writer) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "\n========== DATABASE DUMP [%s] ==========\n", s.now().Format("15:04:05.000"))

	var tables []string
	if err := s.db.Select(&tables, "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"); err != nil {
		fmt.Fprintf(&buf, "Error getting tables: %v\n", err)
		w.Write(buf.Bytes())
		return
	}

	for _, table := range tables {
		fmt.Fprintf(&buf, "--- Table: %s ---\n", table)
		dumpTable(&buf, s.db, table)
		buf.WriteString("\n")
	}
	w.Write(buf.Bytes())
}

func dumpTable(buf *bytes.Buffer, db *sqlx.DB, table string) {
	rows, err := db.Queryx("SELECT * FROM " + table)
	if err != nil {
		fmt.Fprintf(buf, "Error: %v\n", err)
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		fmt.Fprintf(buf, "Error getting columns: %v\n", err)
		return
	}
	fmt.Fprintf(buf, "Columns: %s\n", strings.Join(cols, " | "))

	n := 0
	for rows.Next() {
		n++
		values, err := rows.SliceScan()
		if err != nil {
			fmt.Fprintf(buf, "Error scanning row: %v\n", err)
			continue
		}
		cells := make([]string, len(values))
		for i, v := range values {
			switch val := v.(type) {
			case nil:
				cells[i] = "NULL"
			case []byte:
				cells[i] = string(val)
			default:
				cells[i] = fmt.Sprintf("%v", val)
			}
		}
		fmt.Fprintf(buf, "Row %d: %s\n", n, strings.Join(cells, " | "))
	}
	if n == 0 {
		buf.WriteString("(empty)\n")
	}
}
