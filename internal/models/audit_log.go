package models

import "time"

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ActorID *uint  `gorm:"index" json:"actor_id"`
	Action  string `gorm:"size:20;not null;index" json:"action"`

	Target    string `gorm:"column:table_name;size:50" json:"table_name"`
	RecordID  *uint  `json:"record_id"`
	OldValues string `gorm:"type:text" json:"old_values"`
	NewValues string `gorm:"type:text" json:"new_values"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
