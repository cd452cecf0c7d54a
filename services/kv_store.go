package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/breadMSA/Calories/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrKeyNotFound is returned by KVStore.Get when no value is stored under
// the requested key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the persistence contract: JSON documents addressed by string
// keys, written wholesale (last write wins).
type KVStore interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any) error
}

// GormKVStore stores documents as JSON rows in the kv_records table.
type GormKVStore struct{ db *gorm.DB }

func NewGormKVStore(db *gorm.DB) *GormKVStore { return &GormKVStore{db: db} }

func (s *GormKVStore) Get(ctx context.Context, key string, out any) error {
	var row models.KVRecord
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}
	if err := json.Unmarshal(row.Value, out); err != nil {
		return fmt.Errorf("kv decode %q: %w", key, err)
	}
	return nil
}

func (s *GormKVStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv encode %q: %w", key, err)
	}
	row := models.KVRecord{Key: key, Value: datatypes.JSON(raw)}
	err = s.db.WithContext(ctx).
		Where("key = ?", key).
		Assign(models.KVRecord{Value: datatypes.JSON(raw)}).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}
