package store

import (
	"database/sql"
	"fmt"

	"github.com/mwhite/chorechamp/internal/model"
)

// Palette of avatar colors, assigned round-robin as people are added.
var palette = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEEAD", "#D4A5A5", "#9B59B6"}

type PersonStore struct {
	db *sql.DB
}

func NewPersonStore(db *sql.DB) *PersonStore {
	return &PersonStore{db: db}
}

func scanPerson(scanner interface{ Scan(...any) error }) (*model.Person, error) {
	var p model.Person
	err := scanner.Scan(&p.ID, &p.Name, &p.Balance, &p.Color, &p.AvatarSeed, &p.HasPIN, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const personCols = `id, name, balance, color, avatar_seed, pin IS NOT NULL, created_at`

// Create adds a person with a zero balance. The color is chosen by the
// current roster size modulo the palette, and the avatar seed is the name.
func (s *PersonStore) Create(name string) (*model.Person, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&count); err != nil {
		return nil, fmt.Errorf("count people: %w", err)
	}
	color := palette[count%len(palette)]

	result, err := s.db.Exec(
		`INSERT INTO people (name, color, avatar_seed) VALUES (?, ?, ?)`,
		name, color, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PersonStore) GetByID(id int64) (*model.Person, error) {
	row := s.db.QueryRow(`SELECT `+personCols+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *PersonStore) List() ([]model.Person, error) {
	rows, err := s.db.Query(`SELECT ` + personCols + ` FROM people ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// Delete removes the person and cascades to all assignments and transactions
// referencing them. Deleting a missing id is a no-op.
func (s *PersonStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assignments WHERE person_id = ?`, id); err != nil {
		return fmt.Errorf("delete assignments for person: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM transactions WHERE person_id = ?`, id); err != nil {
		return fmt.Errorf("delete transactions for person: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM people WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return tx.Commit()
}

func (s *PersonStore) SetPIN(id int64, hashedPIN string) error {
	_, err := s.db.Exec(`UPDATE people SET pin = ? WHERE id = ?`, hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *PersonStore) ClearPIN(id int64) error {
	_, err := s.db.Exec(`UPDATE people SET pin = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

// GetPINHash returns the stored bcrypt hash, or "" when no PIN is set.
func (s *PersonStore) GetPINHash(id int64) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM people WHERE id = ?`, id).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("person not found")
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	if !pin.Valid {
		return "", nil
	}
	return pin.String, nil
}
