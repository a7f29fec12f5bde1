// Package repository defines the persistence contracts of the boardroom.
// Implementations live in the subpackages; this package has no knowledge of
// any particular store.
package repository

import (
	"context"

	"boardroom-backend/internal/domain"
)

// Default table names, shared by every store.
const (
	DefaultMemoryTable   = "user_memory"
	DefaultMessagesTable = "messages"
)

// MemoryReader reads the user memory profile.
type MemoryReader interface {
	// ListMemories returns every record ordered by category ascending.
	// There is no filtering; the whole table is read.
	ListMemories(ctx context.Context) ([]domain.MemoryRecord, error)
}

// TurnWriter appends conversation turns to durable storage.
type TurnWriter interface {
	// AppendTurns writes turns in the given order. There is no update or
	// delete path.
	AppendTurns(ctx context.Context, turns ...domain.Turn) error
}

// MemoryWriter adds rows to the memory profile. Only the seeding command
// writes memories; the chat path never does.
type MemoryWriter interface {
	AddMemory(ctx context.Context, r domain.MemoryRecord) error
}

// Store is a backing store that serves both the memory profile and the
// conversation log.
type Store interface {
	MemoryReader
	TurnWriter
	Close() error
}

// MessageRow is the persisted shape of a turn: (sender, content).
type MessageRow struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ToMessageRows maps turns to their persisted rows.
func ToMessageRows(turns []domain.Turn) []MessageRow {
	rows := make([]MessageRow, len(turns))
	for i, t := range turns {
		rows[i] = MessageRow{Sender: string(t.Sender), Content: t.Text}
	}
	return rows
}
