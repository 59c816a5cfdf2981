package domain

import "time"

// UserRecord is the persistence row backing the per-user attribute blob.
// Attributes holds the JSON-encoded UserData aggregate; the store treats it
// as opaque, mirroring a key-value object store contract.
type UserRecord struct {
	UserID     string    `gorm:"type:varchar(64);primaryKey"`
	Attributes []byte    `gorm:"type:blob;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (UserRecord) TableName() string { return "user_records" }
