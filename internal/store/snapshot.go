package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mwhite/chorechamp/internal/model"
)

// SnapshotStore exports and restores the four collections as one JSON
// document keyed people / chores / assignments / transactions. PIN hashes
// are not part of the snapshot.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Export() (*model.Snapshot, error) {
	people, err := NewPersonStore(s.db).List()
	if err != nil {
		return nil, fmt.Errorf("export people: %w", err)
	}
	chores, err := NewChoreStore(s.db).List()
	if err != nil {
		return nil, fmt.Errorf("export chores: %w", err)
	}
	assignments, err := NewAssignmentStore(s.db).List()
	if err != nil {
		return nil, fmt.Errorf("export assignments: %w", err)
	}
	transactions, err := NewTransactionStore(s.db).List()
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}

	return &model.Snapshot{
		People:       people,
		Chores:       chores,
		Assignments:  assignments,
		Transactions: transactions,
	}, nil
}

// Import replaces all four collections with the snapshot's contents in one
// transaction, preserving ids.
func (s *SnapshotStore) Import(snap *model.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "assignments", "chores", "people"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range snap.People {
		if _, err := tx.Exec(
			`INSERT INTO people (id, name, balance, color, avatar_seed, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Balance, p.Color, p.AvatarSeed, p.CreatedAt,
		); err != nil {
			return fmt.Errorf("import person %d: %w", p.ID, err)
		}
	}

	for _, c := range snap.Chores {
		if _, err := tx.Exec(
			`INSERT INTO chores (id, title, description, points, icon, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Title, c.Description, c.Points, c.Icon, c.CreatedAt,
		); err != nil {
			return fmt.Errorf("import chore %d: %w", c.ID, err)
		}
	}

	for _, a := range snap.Assignments {
		var due sql.NullString
		if a.DueDate != nil {
			due = sql.NullString{String: *a.DueDate, Valid: true}
		}
		var last sql.NullTime
		if a.LastCompletedAt != nil {
			last = sql.NullTime{Time: *a.LastCompletedAt, Valid: true}
		}
		var active int
		if a.IsActive {
			active = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO assignments (id, chore_id, person_id, frequency, due_date, last_completed_at, is_active, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.ChoreID, a.PersonID, string(a.Frequency), due, last, active, a.CreatedAt,
		); err != nil {
			return fmt.Errorf("import assignment %d: %w", a.ID, err)
		}
	}

	for _, t := range snap.Transactions {
		var choreID sql.NullInt64
		if t.ChoreID != nil {
			choreID = sql.NullInt64{Int64: *t.ChoreID, Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO transactions (id, person_id, chore_id, description, amount, type, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.PersonID, choreID, t.Description, t.Amount, string(t.Type), t.Timestamp,
		); err != nil {
			return fmt.Errorf("import transaction %d: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// DecodeSnapshot parses a snapshot document leniently: a key that is missing
// or does not parse yields an empty collection rather than an error. A body
// that is not a JSON object at all decodes to an empty snapshot.
func DecodeSnapshot(r io.Reader) *model.Snapshot {
	snap := &model.Snapshot{}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return snap
	}

	if data, ok := raw["people"]; ok {
		var people []model.Person
		if json.Unmarshal(data, &people) == nil {
			snap.People = people
		}
	}
	if data, ok := raw["chores"]; ok {
		var chores []model.Chore
		if json.Unmarshal(data, &chores) == nil {
			snap.Chores = chores
		}
	}
	if data, ok := raw["assignments"]; ok {
		var assignments []model.Assignment
		if json.Unmarshal(data, &assignments) == nil {
			snap.Assignments = assignments
		}
	}
	if data, ok := raw["transactions"]; ok {
		var transactions []model.Transaction
		if json.Unmarshal(data, &transactions) == nil {
			snap.Transactions = transactions
		}
	}

	return snap
}
