package persist

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Slot keys. They match the keys used by the web client so exported state
// can be shared.
const (
	KeyFavorites      = "favoriteJobs"
	KeyRecentlyViewed = "recentlyViewed"
	KeyApplied        = "appliedJobs"
	KeyAdmin          = "isAdmin"
	KeyAdminToken     = "adminToken"
)

// Adapter reads and writes the JSON encoded identifier slots. Reads never
// fail: missing or corrupt data reads as empty. Writes replace the whole slot.
type Adapter struct {
	storage Storage
	logger  zerolog.Logger
}

// NewAdapter wraps storage.
func NewAdapter(storage Storage, logger zerolog.Logger) *Adapter {
	return &Adapter{storage: storage, logger: logger}
}

// Favorites returns the stored favorite job ids.
func (a *Adapter) Favorites() []string { return a.readIDs(KeyFavorites) }

// SaveFavorites replaces the stored favorite job ids.
func (a *Adapter) SaveFavorites(ids []string) error { return a.writeIDs(KeyFavorites, ids) }

// RecentlyViewed returns the stored recently viewed job ids, newest first.
func (a *Adapter) RecentlyViewed() []string { return a.readIDs(KeyRecentlyViewed) }

// SaveRecentlyViewed replaces the stored recently viewed job ids.
func (a *Adapter) SaveRecentlyViewed(ids []string) error { return a.writeIDs(KeyRecentlyViewed, ids) }

// Applied returns the stored applied job ids.
func (a *Adapter) Applied() []string { return a.readIDs(KeyApplied) }

// SaveApplied replaces the stored applied job ids.
func (a *Adapter) SaveApplied(ids []string) error { return a.writeIDs(KeyApplied, ids) }

// IsAdmin returns the stored admin flag.
func (a *Adapter) IsAdmin() bool {
	raw, ok := a.read(KeyAdmin)
	if !ok {
		return false
	}
	var flag bool
	if err := json.Unmarshal([]byte(raw), &flag); err != nil {
		a.logger.Debug().Str("key", KeyAdmin).Err(err).Msg("discarding unreadable slot")
		return false
	}
	return flag
}

// AdminToken returns the stored admin token, if any.
func (a *Adapter) AdminToken() string {
	raw, ok := a.read(KeyAdminToken)
	if !ok {
		return ""
	}
	var token string
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		a.logger.Debug().Str("key", KeyAdminToken).Err(err).Msg("discarding unreadable slot")
		return ""
	}
	return token
}

// SaveAdmin stores the admin flag and token. Clearing the flag removes both slots.
func (a *Adapter) SaveAdmin(isAdmin bool, token string) error {
	if !isAdmin {
		if err := a.storage.RemoveItem(KeyAdmin); err != nil {
			return fmt.Errorf("failed to clear admin flag: %w", err)
		}
		if err := a.storage.RemoveItem(KeyAdminToken); err != nil {
			return fmt.Errorf("failed to clear admin token: %w", err)
		}
		return nil
	}
	if err := a.writeJSON(KeyAdminToken, token); err != nil {
		return err
	}
	return a.writeJSON(KeyAdmin, true)
}

func (a *Adapter) read(key string) (string, bool) {
	raw, ok, err := a.storage.GetItem(key)
	if err != nil {
		a.logger.Warn().Str("key", key).Err(err).Msg("local storage read failed")
		return "", false
	}
	return raw, ok
}

func (a *Adapter) readIDs(key string) []string {
	raw, ok := a.read(key)
	if !ok {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		if err != nil {
			a.logger.Debug().Str("key", key).Err(err).Msg("discarding unreadable slot")
		}
		return []string{}
	}
	return ids
}

func (a *Adapter) writeIDs(key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return a.writeJSON(key, ids)
}

func (a *Adapter) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := a.storage.SetItem(key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
