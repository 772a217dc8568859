// Package store persists named illuminant spectral power distributions in a
// SQLite database and serves them to the simulation pipeline.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/chromascope/relight/internal/spectral"
)

//go:embed schema.sql
var schemaSQL string

// Record describes a stored illuminant without its spectral payload.
type Record struct {
	Name      string
	Samples   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store handles illuminant database operations. Connections are opened
// lazily; writers get a WAL connection that initializes the schema, readers
// a read-only one.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the SQLite database at dbPath. The file is
// created on first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		// The schema must exist before a read-only connection can see it.
		if _, err := s.getWriteDB(); err != nil {
			s.readDBErr = err
			return
		}

		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func validate(name string, spd spectral.Sampled) error {
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(spd.Values) == 0 {
		return &ValidationError{Field: "spd", Reason: "must not be empty"}
	}
	if err := spd.Validate(); err != nil {
		return &ValidationError{Field: "spd", Reason: err.Error()}
	}
	return nil
}

func marshalSPD(spd spectral.Sampled) (wavelengths, power string, err error) {
	w, err := json.Marshal([]float64(spd.Wavelengths))
	if err != nil {
		return "", "", fmt.Errorf("marshaling wavelengths: %w", err)
	}
	p, err := json.Marshal(spd.Values)
	if err != nil {
		return "", "", fmt.Errorf("marshaling power values: %w", err)
	}
	return string(w), string(p), nil
}

func unmarshalSPD(name, wavelengths, power string) (spectral.Sampled, error) {
	var spd spectral.Sampled
	if err := json.Unmarshal([]byte(wavelengths), (*[]float64)(&spd.Wavelengths)); err != nil {
		return spectral.Sampled{}, fmt.Errorf("unmarshaling wavelengths of '%s': %w", name, err)
	}
	if err := json.Unmarshal([]byte(power), &spd.Values); err != nil {
		return spectral.Sampled{}, fmt.Errorf("unmarshaling power values of '%s': %w", name, err)
	}
	return spd, nil
}

const insertIlluminantSQL = `
INSERT INTO illuminants (name, wavelengths, power)
VALUES (?, ?, ?)`

// Add stores a new named illuminant. Empty names or spectra and duplicate
// names are rejected with a ValidationError.
func (s *Store) Add(ctx context.Context, name string, spd spectral.Sampled) (err error) {
	if err = validate(name, spd); err != nil {
		return err
	}

	wavelengths, power, err := marshalSPD(spd)
	if err != nil {
		return err
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertIlluminantSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.ExecContext(ctx, name, wavelengths, power); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && errors.Is(sqliteErr.ExtendedCode, sqlite3.ErrConstraintUnique) {
			return &ValidationError{Field: "name", Reason: fmt.Sprintf("'%s' already exists", name)}
		}
		return fmt.Errorf("inserting illuminant: %w", err)
	}
	return nil
}

const selectIlluminantSQL = `
SELECT wavelengths, power
FROM illuminants
WHERE name = ?`

// Get returns the SPD of a named illuminant, or a NotFoundError.
func (s *Store) Get(ctx context.Context, name string) (spd spectral.Sampled, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return spectral.Sampled{}, fmt.Errorf("getting read connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, selectIlluminantSQL)
	if err != nil {
		return spectral.Sampled{}, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var wavelengths, power string
	if err = stmt.QueryRowContext(ctx, name).Scan(&wavelengths, &power); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return spectral.Sampled{}, &NotFoundError{Name: name}
		}
		return spectral.Sampled{}, fmt.Errorf("scanning illuminant: %w", err)
	}
	return unmarshalSPD(name, wavelengths, power)
}

const updateIlluminantSQL = `
UPDATE illuminants
SET wavelengths = ?, power = ?, updated_at = CURRENT_TIMESTAMP
WHERE name = ?`

// Update replaces the SPD of an existing illuminant. Absent names yield a
// NotFoundError, invalid payloads a ValidationError.
func (s *Store) Update(ctx context.Context, name string, spd spectral.Sampled) (err error) {
	if err = validate(name, spd); err != nil {
		return err
	}

	wavelengths, power, err := marshalSPD(spd)
	if err != nil {
		return err
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, updateIlluminantSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, wavelengths, power, name)
	if err != nil {
		return fmt.Errorf("updating illuminant: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Name: name}
	}
	return nil
}

const deleteIlluminantSQL = `
DELETE FROM illuminants
WHERE name = ?`

// Delete removes a named illuminant, or returns a NotFoundError.
func (s *Store) Delete(ctx context.Context, name string) (err error) {
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, deleteIlluminantSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("deleting illuminant: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Name: name}
	}
	return nil
}

const selectAllIlluminantsSQL = `
SELECT name, wavelengths, power
FROM illuminants
ORDER BY name`

// Load returns the full illuminant table as a name -> SPD snapshot.
func (s *Store) Load(ctx context.Context) (table map[string]spectral.Sampled, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectAllIlluminantsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying illuminants: %w", err)
	}
	defer closeWithError(rows, &err)

	table = make(map[string]spectral.Sampled)
	for rows.Next() {
		var name, wavelengths, power string
		if err = rows.Scan(&name, &wavelengths, &power); err != nil {
			return nil, fmt.Errorf("scanning illuminant: %w", err)
		}
		var spd spectral.Sampled
		if spd, err = unmarshalSPD(name, wavelengths, power); err != nil {
			return nil, err
		}
		table[name] = spd
	}
	return table, rows.Err()
}

const listIlluminantsSQL = `
SELECT name, power, created_at, updated_at
FROM illuminants
ORDER BY name`

// List returns metadata for every stored illuminant, ordered by name.
func (s *Store) List(ctx context.Context) (records []Record, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, listIlluminantsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying illuminants: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var rec Record
		var power string
		if err = rows.Scan(&rec.Name, &power, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning illuminant: %w", err)
		}

		var values []float64
		if err = json.Unmarshal([]byte(power), &values); err != nil {
			return nil, fmt.Errorf("unmarshaling power values of '%s': %w", rec.Name, err)
		}
		rec.Samples = len(values)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes both database connections.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
