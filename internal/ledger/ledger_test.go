package ledger

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mwhite/chorechamp/internal/database"
	"github.com/mwhite/chorechamp/internal/model"
	"github.com/mwhite/chorechamp/internal/store"
)

type fixture struct {
	db     *sql.DB
	ledger *Ledger
	people *store.PersonStore
	chores *store.ChoreStore
	assign *store.AssignmentStore
	trans  *store.TransactionStore
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &fixture{
		db:     db,
		ledger: New(db),
		people: store.NewPersonStore(db),
		chores: store.NewChoreStore(db),
		assign: store.NewAssignmentStore(db),
		trans:  store.NewTransactionStore(db),
	}
}

// checkInvariant asserts that the stored balance equals earned minus spent.
func (f *fixture) checkInvariant(t *testing.T, personID int64) {
	t.Helper()
	person, err := f.people.GetByID(personID)
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	earned, spent, err := f.trans.PointTotals(personID)
	if err != nil {
		t.Fatalf("point totals: %v", err)
	}
	if person.Balance != earned-spent {
		t.Fatalf("balance %d != earned %d - spent %d", person.Balance, earned, spent)
	}
}

func TestCompleteThenRedeem(t *testing.T) {
	f := setup(t)

	ava, _ := f.people.Create("Ava")
	dishes, _ := f.chores.Create("Dishes", "", 50, "🍽️")
	assignment, _ := f.assign.Create(dishes.ID, ava.ID, model.FrequencyDaily, nil, true)

	record, err := f.ledger.CompleteChore(assignment.ID, time.Now())
	if err != nil {
		t.Fatalf("complete chore: %v", err)
	}
	if record == nil {
		t.Fatal("expected a transaction")
	}
	if record.Type != model.TransactionEarn || record.Amount != 50 {
		t.Errorf("record = %+v", record)
	}
	if record.ChoreID == nil || *record.ChoreID != dishes.ID {
		t.Error("EARN record should reference the chore")
	}
	if record.Description != "Completed: Dishes" {
		t.Errorf("description = %q", record.Description)
	}

	person, _ := f.people.GetByID(ava.ID)
	if person.Balance != 50 {
		t.Errorf("balance = %d, want 50", person.Balance)
	}
	f.checkInvariant(t, ava.ID)

	got, _ := f.assign.GetByID(assignment.ID)
	if got.LastCompletedAt == nil {
		t.Error("expected last_completed_at to be set")
	}
	if !got.IsActive {
		t.Error("DAILY assignment should stay active after completion")
	}

	// Redeem part of the balance.
	spend, err := f.ledger.RedeemPoints(ava.ID, 30, "Treat", time.Now())
	if err != nil {
		t.Fatalf("redeem points: %v", err)
	}
	if spend.Type != model.TransactionSpend || spend.Amount != 30 {
		t.Errorf("spend = %+v", spend)
	}
	if spend.ChoreID != nil {
		t.Error("SPEND record must not reference a chore")
	}
	if spend.Description != "Redeemed: Treat" {
		t.Errorf("description = %q", spend.Description)
	}

	person, _ = f.people.GetByID(ava.ID)
	if person.Balance != 20 {
		t.Errorf("balance = %d, want 20", person.Balance)
	}
	history, _ := f.trans.ListByPerson(ava.ID)
	if len(history) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(history))
	}
	// Newest first.
	if history[0].Type != model.TransactionSpend {
		t.Error("expected the SPEND entry first")
	}
	f.checkInvariant(t, ava.ID)
}

func TestRedeemRejections(t *testing.T) {
	f := setup(t)

	ava, _ := f.people.Create("Ava")
	dishes, _ := f.chores.Create("Dishes", "", 20, "")
	assignment, _ := f.assign.Create(dishes.ID, ava.ID, model.FrequencyDaily, nil, true)
	f.ledger.CompleteChore(assignment.ID, time.Now())

	tests := []struct {
		name    string
		person  int64
		amount  int
		wantErr error
	}{
		{"over balance", ava.ID, 999, ErrInsufficientBalance},
		{"zero amount", ava.ID, 0, ErrInvalidAmount},
		{"negative amount", ava.ID, -5, ErrInvalidAmount},
		{"missing person", 424242, 10, ErrPersonNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := f.ledger.RedeemPoints(tt.person, tt.amount, "Too much", time.Now())
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if record != nil {
				t.Error("expected no transaction on rejection")
			}
		})
	}

	// Nothing moved: still exactly one EARN entry and the full balance.
	person, _ := f.people.GetByID(ava.ID)
	if person.Balance != 20 {
		t.Errorf("balance = %d, want 20", person.Balance)
	}
	history, _ := f.trans.ListByPerson(ava.ID)
	if len(history) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(history))
	}
	f.checkInvariant(t, ava.ID)
}

func TestCompleteOnceDeactivatesAndRefusesRepeat(t *testing.T) {
	f := setup(t)

	ava, _ := f.people.Create("Ava")
	attic, _ := f.chores.Create("Clean the attic", "", 200, "")
	assignment, _ := f.assign.Create(attic.ID, ava.ID, model.FrequencyOnce, nil, true)

	record, err := f.ledger.CompleteChore(assignment.ID, time.Now())
	if err != nil {
		t.Fatalf("complete chore: %v", err)
	}
	if record == nil {
		t.Fatal("expected a transaction")
	}

	got, _ := f.assign.GetByID(assignment.ID)
	if got.IsActive {
		t.Error("ONCE assignment should be inactive after completion")
	}

	// A second completion attempt must refuse, not award again.
	record, err = f.ledger.CompleteChore(assignment.ID, time.Now())
	if err != ErrAssignmentInactive {
		t.Fatalf("err = %v, want ErrAssignmentInactive", err)
	}
	if record != nil {
		t.Error("expected no transaction on refused completion")
	}

	person, _ := f.people.GetByID(ava.ID)
	if person.Balance != 200 {
		t.Errorf("balance = %d, want 200", person.Balance)
	}
	f.checkInvariant(t, ava.ID)
}

func TestCompleteUnresolvedReferencesIsSilentNoop(t *testing.T) {
	f := setup(t)

	ava, _ := f.people.Create("Ava")
	dishes, _ := f.chores.Create("Dishes", "", 50, "")

	// Missing assignment.
	record, err := f.ledger.CompleteChore(999, time.Now())
	if err != nil || record != nil {
		t.Fatalf("missing assignment: record=%v err=%v", record, err)
	}

	// Dangling chore reference.
	dangling, _ := f.assign.Create(777, ava.ID, model.FrequencyDaily, nil, true)
	record, err = f.ledger.CompleteChore(dangling.ID, time.Now())
	if err != nil || record != nil {
		t.Fatalf("dangling chore: record=%v err=%v", record, err)
	}

	// Dangling person reference.
	orphan, _ := f.assign.Create(dishes.ID, 888, model.FrequencyDaily, nil, true)
	record, err = f.ledger.CompleteChore(orphan.ID, time.Now())
	if err != nil || record != nil {
		t.Fatalf("dangling person: record=%v err=%v", record, err)
	}

	// No partial effects anywhere.
	person, _ := f.people.GetByID(ava.ID)
	if person.Balance != 0 {
		t.Errorf("balance = %d, want 0", person.Balance)
	}
	history, _ := f.trans.List()
	if len(history) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(history))
	}
	got, _ := f.assign.GetByID(dangling.ID)
	if got.LastCompletedAt != nil {
		t.Error("no-op completion must not stamp the assignment")
	}
}

func TestCompleteDisabledAssignmentRefuses(t *testing.T) {
	f := setup(t)

	ava, _ := f.people.Create("Ava")
	dishes, _ := f.chores.Create("Dishes", "", 50, "")
	assignment, _ := f.assign.Create(dishes.ID, ava.ID, model.FrequencyDaily, nil, false)

	record, err := f.ledger.CompleteChore(assignment.ID, time.Now())
	if err != ErrAssignmentInactive {
		t.Fatalf("err = %v, want ErrAssignmentInactive", err)
	}
	if record != nil {
		t.Error("expected no transaction")
	}
}

func TestBalanceInvariantAcrossMixedOperations(t *testing.T) {
	f := setup(t)

	ava, _ := f.people.Create("Ava")
	dishes, _ := f.chores.Create("Dishes", "", 50, "")
	laundry, _ := f.chores.Create("Laundry", "", 80, "")

	a1, _ := f.assign.Create(dishes.ID, ava.ID, model.FrequencyDaily, nil, true)
	a2, _ := f.assign.Create(laundry.ID, ava.ID, model.FrequencyWeekly, nil, true)

	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := f.ledger.CompleteChore(a1.ID, day.AddDate(0, 0, i)); err != nil {
			t.Fatalf("complete dishes day %d: %v", i, err)
		}
		f.checkInvariant(t, ava.ID)
	}
	if _, err := f.ledger.CompleteChore(a2.ID, day); err != nil {
		t.Fatalf("complete laundry: %v", err)
	}
	f.checkInvariant(t, ava.ID)

	f.ledger.RedeemPoints(ava.ID, 100, "Cinema", day)
	f.checkInvariant(t, ava.ID)
	f.ledger.RedeemPoints(ava.ID, 5000, "Rejected", day)
	f.checkInvariant(t, ava.ID)

	person, _ := f.people.GetByID(ava.ID)
	if person.Balance != 5*50+80-100 {
		t.Errorf("balance = %d, want %d", person.Balance, 5*50+80-100)
	}
}
