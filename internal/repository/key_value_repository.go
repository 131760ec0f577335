package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/cv-screener/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValueStore is the persisted-store capability the campaign keeps its
// send status in. A missing key reports ok=false, not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type KeyValueRepository struct {
	db *gorm.DB
}

func NewKeyValueRepository(db *gorm.DB) *KeyValueRepository {
	return &KeyValueRepository{db}
}

func (r *KeyValueRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.KeyValue
	err := r.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set upserts the whole value in one statement.
func (r *KeyValueRepository) Set(ctx context.Context, key, value string) error {
	entry := model.KeyValue{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *KeyValueRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.KeyValue{}, "key = ?", key).Error
}
