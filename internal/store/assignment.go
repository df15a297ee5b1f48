package store

import (
	"database/sql"
	"fmt"

	"github.com/mwhite/chorechamp/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var dueDate sql.NullString
	var lastCompleted sql.NullTime
	var active int

	err := scanner.Scan(
		&a.ID, &a.ChoreID, &a.PersonID, &a.Frequency,
		&dueDate, &lastCompleted, &active, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		a.DueDate = &dueDate.String
	}
	if lastCompleted.Valid {
		a.LastCompletedAt = &lastCompleted.Time
	}
	a.IsActive = active != 0
	return &a, nil
}

const assignmentCols = `id, chore_id, person_id, frequency, due_date, last_completed_at, is_active, created_at`

// Create records an assignment. The chore and person references are taken
// on faith; a dangling reference is filtered out wherever assignments are
// joined with their chore or person.
func (s *AssignmentStore) Create(choreID, personID int64, frequency model.Frequency, dueDate *string, isActive bool) (*model.Assignment, error) {
	var due sql.NullString
	if dueDate != nil {
		due = sql.NullString{String: *dueDate, Valid: true}
	}
	var active int
	if isActive {
		active = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO assignments (chore_id, person_id, frequency, due_date, is_active) VALUES (?, ?, ?, ?, ?)`,
		choreID, personID, string(frequency), due, active,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AssignmentStore) GetByID(id int64) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *AssignmentStore) List() ([]model.Assignment, error) {
	rows, err := s.db.Query(`SELECT ` + assignmentCols + ` FROM assignments ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func (s *AssignmentStore) ListByPerson(personID int64) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments WHERE person_id = ? ORDER BY id ASC`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments by person: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// Delete removes an assignment. Deleting a missing id is a no-op.
func (s *AssignmentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// Toggle flips the active flag. A missing id is a no-op.
func (s *AssignmentStore) Toggle(id int64) (*model.Assignment, error) {
	_, err := s.db.Exec(`UPDATE assignments SET is_active = 1 - is_active WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("toggle assignment: %w", err)
	}
	return s.GetByID(id)
}
