package engine

import (
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
)

// Ledger is the append-only record of completed draws, oldest first.
type Ledger struct {
	entries []models.HistoryEntry
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records a completed draw.
func (l *Ledger) Append(entry models.HistoryEntry) {
	l.entries = append(l.entries, entry)
}

// All returns a copy of every entry in draw order.
func (l *Ledger) All() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the most recent entry, if any.
func (l *Ledger) Last() (models.HistoryEntry, bool) {
	if len(l.entries) == 0 {
		return models.HistoryEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// NextSeq returns the sequence number for the next entry.
func (l *Ledger) NextSeq() int64 {
	if last, ok := l.Last(); ok {
		return last.Seq + 1
	}
	return 1
}

// Clear drops the whole history. Only a full reset calls it.
func (l *Ledger) Clear() {
	l.entries = nil
}

// Replace swaps the whole history, used when reloading from storage.
func (l *Ledger) Replace(entries []models.HistoryEntry) {
	l.entries = append([]models.HistoryEntry(nil), entries...)
}
