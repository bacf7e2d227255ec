package handlers

import (
	"anonymchat/pkg/models"
	"anonymchat/pkg/store"
)

// preferenceOverlay returns the preference records for the given nicknames,
// keyed by nickname. List responses carry this join so the UI can render
// badges and background images without a second request.
func preferenceOverlay(nicknames map[string]struct{}) map[string]models.UserPreference {
	out := map[string]models.UserPreference{}
	if len(nicknames) == 0 {
		return out
	}
	prefs, err := store.ListPreferences()
	if err != nil {
		// the overlay is decorative; lists still render without it
		return out
	}
	for _, p := range prefs {
		if _, ok := nicknames[p.Nickname]; ok {
			out[p.Nickname] = p
		}
	}
	return out
}

// scrubMessages clears moderation-only fields from public responses.
func scrubMessages(msgs []models.Message) []models.Message {
	for i := range msgs {
		msgs[i].IPAddress = ""
	}
	return msgs
}

func scrubPolls(ps []models.Poll) []models.Poll {
	for i := range ps {
		ps[i].IPAddress = ""
	}
	return ps
}
