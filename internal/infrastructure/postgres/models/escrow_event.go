package models

import "time"

// EscrowEventModel rows are only ever inserted. Payload keeps the exact bytes
// the hash was computed over, so it is plain text rather than jsonb.
type EscrowEventModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	EscrowID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_escrow_event_sequence,priority:1"`
	Sequence  int64     `gorm:"not null;uniqueIndex:idx_escrow_event_sequence,priority:2"`
	Type      string    `gorm:"not null"`
	ActorID   string    `gorm:"not null"`
	Detail    string    `gorm:"type:text"`
	PrevHash  string    `gorm:"not null"`
	Hash      string    `gorm:"not null"`
	Payload   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (EscrowEventModel) TableName() string { return "escrow_events" }
