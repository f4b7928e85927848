package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dougsko/rigd/pkg/rig"
)

// Channel is a stored memory-channel preset
type Channel struct {
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	Frequency int64     `json:"frequency"`
	Mode      rig.Mode  `json:"mode"`
	VFO       rig.VFO   `json:"vfo"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChannelStore handles persistent storage of memory-channel presets
// with a SQLite backend
type ChannelStore struct {
	db     *sql.DB
	dbPath string
}

// NewChannelStore creates a channel store backed by the given database
// file, creating the schema if needed
func NewChannelStore(dbPath string) (*ChannelStore, error) {
	store := &ChannelStore{dbPath: dbPath}
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize channel store: %w", err)
	}
	return store, nil
}

func (cs *ChannelStore) initialize() error {
	if cs.dbPath == "" {
		cs.dbPath = "./rigd.db"
	}
	if err := os.MkdirAll(filepath.Dir(cs.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	connectionString := cs.dbPath + "?_busy_timeout=10000&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	cs.db = db

	schema := `
	CREATE TABLE IF NOT EXISTS channels (
		number INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		frequency INTEGER NOT NULL,
		mode TEXT NOT NULL,
		vfo TEXT NOT NULL DEFAULT 'A',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_channels_name ON channels(name);
	`
	if _, err := cs.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save inserts or replaces a channel preset
func (cs *ChannelStore) Save(ch Channel) error {
	query := `
		INSERT INTO channels (number, name, frequency, mode, vfo, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(number) DO UPDATE SET
			name = excluded.name,
			frequency = excluded.frequency,
			mode = excluded.mode,
			vfo = excluded.vfo,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := cs.db.Exec(query, ch.Number, ch.Name, ch.Frequency, string(ch.Mode), string(ch.VFO)); err != nil {
		return fmt.Errorf("failed to save channel %d: %w", ch.Number, err)
	}
	return nil
}

// Get returns one channel by number
func (cs *ChannelStore) Get(number int) (*Channel, error) {
	row := cs.db.QueryRow(
		"SELECT number, name, frequency, mode, vfo, updated_at FROM channels WHERE number = ?",
		number,
	)

	var ch Channel
	var mode, vfo string
	if err := row.Scan(&ch.Number, &ch.Name, &ch.Frequency, &mode, &vfo, &ch.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("channel %d not found", number)
		}
		return nil, fmt.Errorf("failed to read channel %d: %w", number, err)
	}
	ch.Mode = rig.Mode(mode)
	ch.VFO = rig.VFO(vfo)
	return &ch, nil
}

// List returns all channels ordered by number
func (cs *ChannelStore) List() ([]Channel, error) {
	rows, err := cs.db.Query(
		"SELECT number, name, frequency, mode, vfo, updated_at FROM channels ORDER BY number")
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var ch Channel
		var mode, vfo string
		if err := rows.Scan(&ch.Number, &ch.Name, &ch.Frequency, &mode, &vfo, &ch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		ch.Mode = rig.Mode(mode)
		ch.VFO = rig.VFO(vfo)
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// Delete removes a channel preset
func (cs *ChannelStore) Delete(number int) error {
	result, err := cs.db.Exec("DELETE FROM channels WHERE number = ?", number)
	if err != nil {
		return fmt.Errorf("failed to delete channel %d: %w", number, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("channel %d not found", number)
	}
	return nil
}

// Close closes the database connection
func (cs *ChannelStore) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}
