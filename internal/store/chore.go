package store

import (
	"database/sql"
	"fmt"

	"github.com/mwhite/chorechamp/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	err := scanner.Scan(&c.ID, &c.Title, &c.Description, &c.Points, &c.Icon, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const choreCols = `id, title, description, points, icon, created_at`

func (s *ChoreStore) Create(title, description string, points int, icon string) (*model.Chore, error) {
	result, err := s.db.Exec(
		`INSERT INTO chores (title, description, points, icon) VALUES (?, ?, ?, ?)`,
		title, description, points, icon,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) List() ([]model.Chore, error) {
	rows, err := s.db.Query(`SELECT ` + choreCols + ` FROM chores ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// Titles returns all chore titles, used to seed the suggestion prompt.
func (s *ChoreStore) Titles() ([]string, error) {
	rows, err := s.db.Query(`SELECT title FROM chores ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chore titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// Delete removes the chore and cascades to all assignments referencing it.
// Transactions keep their chore reference; it simply stops resolving.
func (s *ChoreStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assignments WHERE chore_id = ?`, id); err != nil {
		return fmt.Errorf("delete assignments for chore: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM chores WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return tx.Commit()
}
