package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KVRecord is the single persistence table: a key-value row holding one
// JSON document. Day records live under "records:<date>", the profile under
// "user:profile" and the recent-date index under "records:index".
type KVRecord struct {
	gorm.Model
	Key   string         `gorm:"uniqueIndex;not null"`
	Value datatypes.JSON `gorm:"not null"`
}
