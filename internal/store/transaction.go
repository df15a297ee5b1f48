package store

import (
	"database/sql"
	"fmt"

	"github.com/mwhite/chorechamp/internal/model"
)

// TransactionStore reads the append-only ledger. Writes happen only through
// the ledger package, which appends inside the same SQL transaction as the
// balance change.
type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var choreID sql.NullInt64

	err := scanner.Scan(&t.ID, &t.PersonID, &choreID, &t.Description, &t.Amount, &t.Type, &t.Timestamp)
	if err != nil {
		return nil, err
	}

	if choreID.Valid {
		t.ChoreID = &choreID.Int64
	}
	return &t, nil
}

const transactionCols = `id, person_id, chore_id, description, amount, type, timestamp`

// List returns the whole ledger, newest first.
func (s *TransactionStore) List() ([]model.Transaction, error) {
	rows, err := s.db.Query(`SELECT ` + transactionCols + ` FROM transactions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// ListByPerson returns one person's ledger entries, newest first.
func (s *TransactionStore) ListByPerson(personID int64) ([]model.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT `+transactionCols+` FROM transactions WHERE person_id = ? ORDER BY id DESC`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions by person: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// PointTotals sums a person's EARN and SPEND amounts. The person's stored
// balance must always equal earned - spent.
func (s *TransactionStore) PointTotals(personID int64) (earned, spent int, err error) {
	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE person_id = ? AND type = ?`,
		personID, string(model.TransactionEarn),
	).Scan(&earned)
	if err != nil {
		return 0, 0, fmt.Errorf("sum earned: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE person_id = ? AND type = ?`,
		personID, string(model.TransactionSpend),
	).Scan(&spent)
	if err != nil {
		return 0, 0, fmt.Errorf("sum spent: %w", err)
	}
	return earned, spent, nil
}
