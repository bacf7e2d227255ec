package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"anonymchat/pkg/logger"
	"anonymchat/pkg/models"
	"anonymchat/pkg/session"
	"anonymchat/pkg/store"
	"anonymchat/pkg/uploads"
	"anonymchat/pkg/utils"
	"anonymchat/pkg/validation"
)

// pollAuthor is the fixed byline for admin-created polls.
const pollAuthor = "Admin"

// AdminLogin checks the submitted credentials against the configured admin
// account and sets the moderation session cookie on success.
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !session.VerifyAdmin(body.Username, body.Password, opts.AdminUser, opts.AdminPass) {
		logger.AuditEvent("admin_login_failed", "ip", utils.ClientIP(r))
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	session.SetAdmin(w)
	logger.AuditEvent("admin_login", "ip", utils.ClientIP(r))
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"success": "Logged in."})
}

// AdminLogout clears the moderation session cookie.
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearAdmin(w)
	logger.AuditEvent("admin_logout", "ip", utils.ClientIP(r))
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"success": "Logged out."})
}

// RegisterAdmin registers the moderation endpoints on the gated subrouter.
func RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/messages", adminListMessages).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id}", adminDeleteMessage).Methods(http.MethodDelete)
	r.HandleFunc("/polls", adminListPolls).Methods(http.MethodGet)
	r.HandleFunc("/polls", adminCreatePoll).Methods(http.MethodPost)
	r.HandleFunc("/polls/{id}", adminDeletePoll).Methods(http.MethodDelete)
	r.HandleFunc("/preferences", adminListPreferences).Methods(http.MethodGet)
	r.HandleFunc("/preferences/{nickname}", adminUpsertPreference).Methods(http.MethodPut)
	r.HandleFunc("/preferences/{nickname}", adminDeletePreference).Methods(http.MethodDelete)
	r.HandleFunc("/preferences/{nickname}/background", adminUploadBackground).Methods(http.MethodPost)
	r.HandleFunc("/stats", adminStats).Methods(http.MethodGet)
	r.HandleFunc("/reconcile", adminReconcile).Methods(http.MethodPost)
}

func adminListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := store.ListAllMessages()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"messages": msgs})
}

func adminDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, ok, err := store.DeleteMessageCascade(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	for _, m := range removed {
		if m.FileURL != "" {
			uploads.Remove(m.FileURL)
		}
	}
	logger.AuditEvent("message_deleted", "id", id, "removed", len(removed))
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"success": "Message deleted.",
		"removed": len(removed),
	})
}

func adminListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := store.ListPolls()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to load polls")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"polls": polls})
}

func adminCreatePoll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	question := strings.TrimSpace(body.Question)
	if err := validation.ValidatePollQuestion(question); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	poll, err := store.AddPoll(pollAuthor, question, body.Options, utils.ClientIP(r))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.AuditEvent("poll_created", "id", poll.ID, "question", poll.Question)
	_ = utils.JSONWrite(w, http.StatusCreated, map[string]any{
		"success": "Poll created.",
		"poll":    poll,
	})
}

func adminDeletePoll(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := store.DeletePoll(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete poll")
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "poll not found")
		return
	}
	logger.AuditEvent("poll_deleted", "id", id)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"success": "Poll deleted."})
}

func adminListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := store.ListPreferences()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"preferences": prefs})
}

// adminUpsertPreference merges badge and background changes into a user's
// record. Absent fields are left untouched; an explicit null background
// removes it and deletes the old file best-effort.
func adminUpsertPreference(w http.ResponseWriter, r *http.Request) {
	nickname := mux.Vars(r)["nickname"]
	var body struct {
		Badges        *[]string       `json:"badges"`
		BackgroundGif json.RawMessage `json:"backgroundGifUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var upd store.PreferenceUpdate
	if body.Badges != nil {
		for _, b := range *body.Badges {
			if !models.ValidBadge(b) {
				utils.JSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown badge %q", b))
				return
			}
		}
		upd.Badges = *body.Badges
	}
	if len(body.BackgroundGif) > 0 {
		upd.SetBackground = true
		if string(body.BackgroundGif) != "null" {
			var url string
			if err := json.Unmarshal(body.BackgroundGif, &url); err != nil {
				utils.JSONError(w, http.StatusBadRequest, "backgroundGifUrl must be a string or null")
				return
			}
			upd.BackgroundURL = strings.TrimSpace(url)
		}
	}

	pref, oldURL, err := store.UpsertPreference(nickname, upd)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	if oldURL != "" {
		uploads.Remove(oldURL)
	}
	logger.AuditEvent("preference_updated", "nickname", nickname)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"success":    "Preference saved.",
		"preference": pref,
	})
}

// adminUploadBackground stores a background image for a user and points
// their preference record at it.
func adminUploadBackground(w http.ResponseWriter, r *http.Request) {
	nickname := mux.Vars(r)["nickname"]
	r.Body = http.MaxBytesReader(w, r.Body, opts.UploadMaxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if opts.UploadMaxBytes > 0 && header.Size > opts.UploadMaxBytes {
		utils.JSONError(w, http.StatusBadRequest, "background exceeds size limit")
		return
	}
	mime := header.Header.Get("Content-Type")
	if err := validation.ValidateAttachmentType(mime, opts.AttachmentTypes); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	url, err := uploads.SaveBackground(nickname, header.Filename, file)
	if err != nil {
		logger.Error("background_save_failed", "error", err.Error())
		utils.JSONError(w, http.StatusInternalServerError, "failed to store background")
		return
	}
	pref, oldURL, err := store.UpsertPreference(nickname, store.PreferenceUpdate{
		SetBackground: true,
		BackgroundURL: url,
	})
	if err != nil {
		uploads.Remove(url)
		utils.JSONError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	if oldURL != "" {
		uploads.Remove(oldURL)
	}
	logger.AuditEvent("background_set", "nickname", nickname, "url", url)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"success":    "Background updated.",
		"preference": pref,
	})
}

func adminDeletePreference(w http.ResponseWriter, r *http.Request) {
	nickname := mux.Vars(r)["nickname"]
	ok, oldURL, err := store.DeletePreference(nickname)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete preference")
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "preference not found")
		return
	}
	if oldURL != "" {
		uploads.Remove(oldURL)
	}
	logger.AuditEvent("preference_deleted", "nickname", nickname)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"success": "Preference deleted."})
}

func adminStats(w http.ResponseWriter, r *http.Request) {
	topLevel, replies, err := store.CountMessages()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to count messages")
		return
	}
	pollCount, err := store.CountPolls()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to count polls")
		return
	}
	prefCount, err := store.CountPreferences()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to count preferences")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{
		"messages":    topLevel,
		"replies":     replies,
		"polls":       pollCount,
		"preferences": prefCount,
	})
}

func adminReconcile(w http.ResponseWriter, r *http.Request) {
	repaired, orphans, err := store.ReconcileMessages()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "reconcile failed")
		return
	}
	pollsRepaired, err := store.ReconcilePolls()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "reconcile failed")
		return
	}
	logger.AuditEvent("reconcile_run", "messages_repaired", repaired, "orphans_dropped", orphans, "polls_repaired", pollsRepaired)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{
		"messagesRepaired": repaired,
		"orphansDropped":   orphans,
		"pollsRepaired":    pollsRepaired,
	})
}
