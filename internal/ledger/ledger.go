// Package ledger holds the only two operations that move points. Each runs
// in a single SQL transaction so the balance change, the assignment update,
// and the ledger append land together or not at all.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwhite/chorechamp/internal/model"
)

var (
	// ErrAssignmentInactive is returned when completing an assignment that
	// is switched off — including a ONCE assignment that was already
	// completed, which deactivation makes unrepeatable.
	ErrAssignmentInactive = errors.New("assignment is inactive")

	ErrPersonNotFound      = errors.New("person not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type Ledger struct {
	db *sql.DB
}

func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// CompleteChore awards the chore's points to the assigned person, stamps the
// assignment's last completion, and appends an EARN entry. An assignment,
// chore, or person that no longer resolves makes the whole operation a
// silent no-op and returns (nil, nil).
func (l *Ledger) CompleteChore(assignmentID int64, now time.Time) (*model.Transaction, error) {
	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		choreID  int64
		personID int64
		freq     string
		active   int
	)
	err = tx.QueryRow(
		`SELECT chore_id, person_id, frequency, is_active FROM assignments WHERE id = ?`,
		assignmentID,
	).Scan(&choreID, &personID, &freq, &active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if active == 0 {
		return nil, ErrAssignmentInactive
	}

	var (
		title  string
		points int
	)
	err = tx.QueryRow(`SELECT title, points FROM chores WHERE id = ?`, choreID).Scan(&title, &points)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM people WHERE id = ?`, personID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check person: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	if _, err := tx.Exec(`UPDATE people SET balance = balance + ? WHERE id = ?`, points, personID); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	// A one-time chore is done forever once completed.
	stillActive := 1
	if model.Frequency(freq) == model.FrequencyOnce {
		stillActive = 0
	}
	if _, err := tx.Exec(
		`UPDATE assignments SET last_completed_at = ?, is_active = ? WHERE id = ?`,
		now.UTC(), stillActive, assignmentID,
	); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}

	record, err := appendTransaction(tx, model.Transaction{
		PersonID:    personID,
		ChoreID:     &choreID,
		Description: fmt.Sprintf("Completed: %s", title),
		Amount:      points,
		Type:        model.TransactionEarn,
		Timestamp:   now.UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return record, nil
}

// RedeemPoints deducts amount from the person's balance and appends a SPEND
// entry. Nothing changes when a precondition fails; the reason comes back as
// a sentinel error.
func (l *Ledger) RedeemPoints(personID int64, amount int, description string, now time.Time) (*model.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var balance int
	err = tx.QueryRow(`SELECT balance FROM people WHERE id = ?`, personID).Scan(&balance)
	if err == sql.ErrNoRows {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	if balance < amount {
		return nil, ErrInsufficientBalance
	}

	if _, err := tx.Exec(`UPDATE people SET balance = balance - ? WHERE id = ?`, amount, personID); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	record, err := appendTransaction(tx, model.Transaction{
		PersonID:    personID,
		Description: fmt.Sprintf("Redeemed: %s", description),
		Amount:      amount,
		Type:        model.TransactionSpend,
		Timestamp:   now.UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return record, nil
}

func appendTransaction(tx *sql.Tx, t model.Transaction) (*model.Transaction, error) {
	var choreID sql.NullInt64
	if t.ChoreID != nil {
		choreID = sql.NullInt64{Int64: *t.ChoreID, Valid: true}
	}

	result, err := tx.Exec(
		`INSERT INTO transactions (person_id, chore_id, description, amount, type, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		t.PersonID, choreID, t.Description, t.Amount, string(t.Type), t.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id
	return &t, nil
}
