package model

// Snapshot is the full exportable state: the four collections under fixed
// keys. It doubles as the restore format.
type Snapshot struct {
	People       []Person      `json:"people"`
	Chores       []Chore       `json:"chores"`
	Assignments  []Assignment  `json:"assignments"`
	Transactions []Transaction `json:"transactions"`
}
