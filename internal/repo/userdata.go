// Package repo – UserDataStore
//
// This file merges the cache tiers and the persistence adapter behind a
// single get/save contract for the per-user aggregate. Reads walk the tiers
// (local memory → optional remote → database) and backfill on the way out;
// writes go through to the database first and then update every tier
// unconditionally (write-through, no write-behind).
//
// Known gap, kept deliberately: there is no locking or version check, so two
// overlapping saves for the same user are last-writer-wins. Single-turn
// dialogue traffic makes this acceptable; callers must not rely on
// read-modify-write isolation across turns.
package repo

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/recipedeck/go-recipe-backend/internal/cache"
	"github.com/recipedeck/go-recipe-backend/internal/domain"
)

// UserDataStore is the user-data repository combining cache tiers with the
// persistence adapter. Local is required; Remote may be nil.
type UserDataStore struct {
	DB     *gorm.DB
	Local  cache.Store
	Remote cache.Store
}

// NewUserDataStore constructs a UserDataStore over the given tiers.
func NewUserDataStore(db *gorm.DB, local, remote cache.Store) *UserDataStore {
	return &UserDataStore{DB: db, Local: local, Remote: remote}
}

// Get returns the aggregate for userID, initializing and persisting zeroed
// defaults on first access. Cache hits skip the database entirely; a
// persistence read backfills both tiers.
func (s *UserDataStore) Get(ctx context.Context, userID string) (*domain.UserData, error) {
	if blob, ok := s.Local.Get(ctx, userID); ok {
		if data := decodeUserData(blob, userID, "memory"); data != nil {
			return data, nil
		}
	}

	if s.Remote != nil {
		if blob, ok := s.Remote.Get(ctx, userID); ok {
			if data := decodeUserData(blob, userID, "redis"); data != nil {
				s.Local.Put(ctx, userID, blob)
				return data, nil
			}
		}
	}

	blob, err := GetAttributes(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		// First contact: persist the zeroed aggregate so later tiers agree.
		data := domain.NewUserData()
		if err := s.Save(ctx, userID, data); err != nil {
			return nil, err
		}
		return data, nil
	}

	data := decodeUserData(blob, userID, "db")
	if data == nil {
		// A corrupt blob in the database is unrecoverable here; start over.
		data = domain.NewUserData()
		if err := s.Save(ctx, userID, data); err != nil {
			return nil, err
		}
		return data, nil
	}

	s.Local.Put(ctx, userID, blob)
	if s.Remote != nil {
		s.Remote.Put(ctx, userID, blob)
	}
	return data, nil
}

// Save persists the aggregate synchronously and then writes through to both
// cache tiers. A persistence failure propagates and leaves the caches
// untouched, so they never serve data newer than the database.
func (s *UserDataStore) Save(ctx context.Context, userID string, data *domain.UserData) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := SaveAttributes(ctx, s.DB, userID, blob); err != nil {
		return err
	}
	s.Local.Put(ctx, userID, blob)
	if s.Remote != nil {
		s.Remote.Put(ctx, userID, blob)
	}
	return nil
}

// Reset drops every cached snapshot for userID and reloads the aggregate
// from persistence. Used by the cache-reset dialogue flow.
func (s *UserDataStore) Reset(ctx context.Context, userID string) (*domain.UserData, error) {
	s.Local.Invalidate(ctx, userID)
	if s.Remote != nil {
		s.Remote.Invalidate(ctx, userID)
	}
	return s.Get(ctx, userID)
}

// Purge permanently removes the stored aggregate for userID and drops every
// cached snapshot. The next Get re-initializes zeroed defaults.
func (s *UserDataStore) Purge(ctx context.Context, userID string) error {
	if err := DeleteAttributes(ctx, s.DB, userID); err != nil {
		return err
	}
	s.Local.Invalidate(ctx, userID)
	if s.Remote != nil {
		s.Remote.Invalidate(ctx, userID)
	}
	return nil
}

// decodeUserData unmarshals a cached or persisted blob, logging and
// reporting nil when the payload is unusable so the caller can fall through.
func decodeUserData(blob []byte, userID, tier string) *domain.UserData {
	var data domain.UserData
	if err := json.Unmarshal(blob, &data); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("tier", tier).Msg("discarding undecodable user-data snapshot")
		return nil
	}
	if data.Recipes == nil {
		data.Recipes = []domain.Recipe{}
	}
	if data.ActivePreparations == nil {
		data.ActivePreparations = []domain.Preparation{}
	}
	if data.CompletionHistory == nil {
		data.CompletionHistory = []domain.Completion{}
	}
	return &data
}
