package store

import (
	"anonymchat/pkg/logger"
	"anonymchat/pkg/models"
)

func loadPrefs() ([]models.UserPreference, error) {
	out := []models.UserPreference{}
	if err := prefs.load(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPreferences returns every stored preference record.
func ListPreferences() ([]models.UserPreference, error) {
	prefs.mu.Lock()
	defer prefs.mu.Unlock()
	return loadPrefs()
}

// GetPreference looks up the record for a nickname. ok=false when absent.
func GetPreference(nickname string) (models.UserPreference, bool, error) {
	prefs.mu.Lock()
	defer prefs.mu.Unlock()
	ps, err := loadPrefs()
	if err != nil {
		return models.UserPreference{}, false, err
	}
	for _, p := range ps {
		if p.Nickname == nickname {
			return p, true, nil
		}
	}
	return models.UserPreference{}, false, nil
}

// PreferenceUpdate carries the merge-upsert fields. A nil Badges slice
// means "leave unchanged"; SetBackground false leaves the background
// unchanged, while SetBackground true with an empty URL removes it.
type PreferenceUpdate struct {
	Badges        []string
	SetBackground bool
	BackgroundURL string
}

// UpsertPreference creates or merges the record for a nickname. It returns
// the resulting record plus the background URL that was replaced or
// removed (empty when none changed) so the caller can delete the old file.
func UpsertPreference(nickname string, upd PreferenceUpdate) (models.UserPreference, string, error) {
	prefs.mu.Lock()
	defer prefs.mu.Unlock()
	ps, err := loadPrefs()
	if err != nil {
		return models.UserPreference{}, "", err
	}

	idx := -1
	for i := range ps {
		if ps[i].Nickname == nickname {
			idx = i
			break
		}
	}
	if idx < 0 {
		ps = append(ps, models.UserPreference{Nickname: nickname})
		idx = len(ps) - 1
	}

	if upd.Badges != nil {
		ps[idx].Badges = upd.Badges
	}
	var replaced string
	if upd.SetBackground {
		if old := ps[idx].BackgroundGifURL; old != "" && old != upd.BackgroundURL {
			replaced = old
		}
		ps[idx].BackgroundGifURL = upd.BackgroundURL
	}

	if err := prefs.save(ps); err != nil {
		return models.UserPreference{}, "", err
	}
	logger.Info("preference_saved", "nickname", nickname, "badges", len(ps[idx].Badges))
	return ps[idx], replaced, nil
}

// DeletePreference removes the record for a nickname, returning the
// background URL it held so the caller can delete the file.
func DeletePreference(nickname string) (bool, string, error) {
	prefs.mu.Lock()
	defer prefs.mu.Unlock()
	ps, err := loadPrefs()
	if err != nil {
		return false, "", err
	}
	kept := make([]models.UserPreference, 0, len(ps))
	found := false
	var oldBG string
	for _, p := range ps {
		if p.Nickname == nickname {
			found = true
			oldBG = p.BackgroundGifURL
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return false, "", nil
	}
	if err := prefs.save(kept); err != nil {
		return false, "", err
	}
	logger.Info("preference_deleted", "nickname", nickname)
	return true, oldBG, nil
}

// CountPreferences returns the number of stored preference records.
func CountPreferences() (int, error) {
	prefs.mu.Lock()
	defer prefs.mu.Unlock()
	ps, err := loadPrefs()
	if err != nil {
		return 0, err
	}
	return len(ps), nil
}
