package engine

import "time"

// JourneyTransactionName is the transaction spanning all steps of an
// iteration.
const JourneyTransactionName = "Full_Customer_Journey"

// Transaction is a named timing boundary. Step transactions nest inside the
// enclosing journey transaction, so the journey duration is always at least
// the sum of its step durations.
type Transaction struct {
	Name  string
	start time.Time
}

// StartTransaction begins timing.
func StartTransaction(name string) *Transaction {
	return &Transaction{Name: name, start: time.Now()}
}

// Elapsed returns the time since the transaction started.
func (t *Transaction) Elapsed() time.Duration {
	return time.Since(t.start)
}
