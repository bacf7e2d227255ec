// Package session resolves the request identity from the two forum
// cookies: the plain nickname cookie that grants posting and the boolean
// admin-session cookie that grants moderation. Handlers receive an explicit
// Identity value instead of reading cookie state ad hoc.
package session

import (
	"crypto/subtle"
	"net/http"
)

const (
	// NicknameCookie carries the free-text nickname. No signature, no
	// password; possession of the cookie is the identity.
	NicknameCookie = "nickname"
	// AdminCookie is a boolean session marker set after an admin login.
	AdminCookie = "admin-session"
)

var (
	nicknameMaxAge = 60 * 60 * 24 * 7
	adminMaxAge    = 60 * 60 * 24
	secureCookies  = false
)

// Configure sets cookie lifetimes (seconds) and whether cookies are marked
// Secure. Zero max-ages keep the defaults (one week / one day).
func Configure(nickMaxAge, admMaxAge int, secure bool) {
	if nickMaxAge > 0 {
		nicknameMaxAge = nickMaxAge
	}
	if admMaxAge > 0 {
		adminMaxAge = admMaxAge
	}
	secureCookies = secure
}

// Identity is the per-request caller resolved once from cookies.
type Identity struct {
	Nickname string
	Admin    bool
}

// FromRequest resolves the caller's identity from the request cookies.
func FromRequest(r *http.Request) Identity {
	var id Identity
	if c, err := r.Cookie(NicknameCookie); err == nil {
		id.Nickname = c.Value
	}
	if c, err := r.Cookie(AdminCookie); err == nil && c.Value == "true" {
		id.Admin = true
	}
	return id
}

// SetNickname issues the nickname cookie.
func SetNickname(w http.ResponseWriter, nickname string) {
	http.SetCookie(w, &http.Cookie{
		Name:     NicknameCookie,
		Value:    nickname,
		Path:     "/",
		MaxAge:   nicknameMaxAge,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearNickname expires the nickname cookie.
func ClearNickname(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     NicknameCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetAdmin issues the admin session cookie.
func SetAdmin(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   adminMaxAge,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAdmin expires the admin session cookie.
func ClearAdmin(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// VerifyAdmin compares submitted credentials against the configured pair in
// constant time. Empty configured credentials always fail: an unset admin
// account must not be an open one.
func VerifyAdmin(username, password, cfgUser, cfgPass string) bool {
	if cfgUser == "" || cfgPass == "" {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(username), []byte(cfgUser))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(cfgPass))
	return u == 1 && p == 1
}
