// Package repo implements the persistence layer for user attribute blobs,
// backed by GORM. This file provides the key-value persistence adapter:
// one row per user id holding the opaque JSON-encoded aggregate.
//
// The adapter deliberately mirrors an object-store contract
// (get/save/delete by key) so the backing store can be swapped without
// touching the layers above it.
//
// Error semantics:
//   - GetAttributes returns (nil, nil) for an unknown user; absence is not
//     an error at this layer.
//   - SaveAttributes upserts and propagates any DB error to the caller.
//   - DeleteAttributes is idempotent; deleting a missing row is not an error.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recipedeck/go-recipe-backend/internal/domain"
)

// GetAttributes fetches the attribute blob stored for userID. A missing row
// yields (nil, nil) so callers can distinguish first contact from failure.
func GetAttributes(ctx context.Context, db *gorm.DB, userID string) ([]byte, error) {
	var rec domain.UserRecord
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.Attributes, nil
}

// SaveAttributes upserts the attribute blob for userID. The write is
// all-or-nothing per call; there is no partial state to roll back.
func SaveAttributes(ctx context.Context, db *gorm.DB, userID string, attributes []byte) error {
	rec := domain.UserRecord{
		UserID:     userID,
		Attributes: attributes,
		UpdatedAt:  time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"attributes", "updated_at"}),
		}).
		Create(&rec).Error
}

// DeleteAttributes removes the stored blob for userID, if any.
func DeleteAttributes(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.UserRecord{}).Error
}
