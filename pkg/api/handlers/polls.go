package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"anonymchat/pkg/store"
	"anonymchat/pkg/utils"
)

// RegisterPolls registers the public poll endpoints. Poll creation is an
// admin operation and lives on the admin subrouter.
func RegisterPolls(r *mux.Router) {
	r.HandleFunc("/polls", listPolls).Methods(http.MethodGet)
	r.HandleFunc("/polls/{id}/vote", votePoll).Methods(http.MethodPost)
}

func listPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := store.ListPolls()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to load polls")
		return
	}
	nicks := map[string]struct{}{}
	for _, p := range polls {
		nicks[p.Nickname] = struct{}{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"polls":       scrubPolls(polls),
		"preferences": preferenceOverlay(nicks),
	})
}

func votePoll(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		OptionID string `json:"optionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	optionID := strings.TrimSpace(body.OptionID)
	if optionID == "" {
		utils.JSONError(w, http.StatusBadRequest, "optionId is required")
		return
	}
	poll, ok, err := store.Vote(id, optionID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to record vote")
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "poll or option not found")
		return
	}
	poll.IPAddress = ""
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"success": "Vote recorded!",
		"poll":    poll,
	})
}
