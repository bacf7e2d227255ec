package models

// Badge vocabulary. Preferences only ever carry badges from this set.
const (
	BadgeAdmin = "admin"
	BadgeMod   = "mod"
	BadgeNegro = "negro"
)

// KnownBadges lists the accepted badge labels in display order.
var KnownBadges = []string{BadgeAdmin, BadgeMod, BadgeNegro}

// ValidBadge reports whether b belongs to the fixed badge vocabulary.
func ValidBadge(b string) bool {
	for _, k := range KnownBadges {
		if b == k {
			return true
		}
	}
	return false
}

// UserPreference is per-nickname display metadata joined against messages
// and polls at read time. Nickname is the unique key.
type UserPreference struct {
	Nickname         string   `json:"nickname"`
	Badges           []string `json:"badges,omitempty"`
	BackgroundGifURL string   `json:"backgroundGifUrl,omitempty"`
}
