package app

import "mo-go/internal/mo"

// ReconcileRun tracks a CLI operation that may mutate the inventory.
// Runs are created in memory with ID=0. Only inventory-mutating commands
// persist them (giving them an auto-increment ID from the store).
type ReconcileRun struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	Counts     mo.Counts
}

// NewReconcileRun creates a new in-memory run record.
func NewReconcileRun(operation, parameters string) *ReconcileRun {
	return &ReconcileRun{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this run has been saved to the store.
func (r *ReconcileRun) Persisted() bool {
	return r.ID != 0
}
