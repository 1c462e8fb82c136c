package database

import (
	"time"
)

// RecordsTable holds rows written by table channels.
const RecordsTable = "dataflow_records"

// Record is one encoded record written by a table channel. Rows of an
// attempt become visible together when its transaction commits.
type Record struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Channel   string    `gorm:"column:channel;not null"`
	TaskID    string    `gorm:"column:task_id;not null"`
	AttemptID string    `gorm:"column:attempt_id;not null"`
	Seq       int64     `gorm:"column:seq;not null"`
	Codec     string    `gorm:"column:codec;not null"`
	Payload   []byte    `gorm:"column:payload"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName maps Record to its table.
func (Record) TableName() string { return RecordsTable }
