package audit

import "time"

// RetentionDays bounds how long audit entries are kept before the purge job
// removes them.
const RetentionDays = 365

// Entry is an immutable trace of a state-changing operation.
type Entry struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Action    string    `gorm:"size:50;index" json:"action"`
	Entity    string    `gorm:"size:50" json:"entity"`
	EntityRef string    `gorm:"size:100;index" json:"entity_ref"`
	Actor     string    `gorm:"size:100" json:"actor"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Entry) TableName() string { return "audit_entries" }
