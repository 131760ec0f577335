package model

import "time"

// KeyValue backs the persisted-store capability with a single table.
type KeyValue struct {
	Key       string    `gorm:"type:varchar(255);primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (k *KeyValue) TableName() string {
	return "key_values"
}
