package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"anonymchat/pkg/logger"
	"anonymchat/pkg/session"
	"anonymchat/pkg/utils"
	"anonymchat/pkg/validation"
)

// RegisterSession registers the nickname identity endpoints.
func RegisterSession(r *mux.Router) {
	r.HandleFunc("/session/nickname", setNickname).Methods(http.MethodPost)
	r.HandleFunc("/session/nickname", signOut).Methods(http.MethodDelete)
}

func setNickname(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	nickname := strings.TrimSpace(body.Nickname)
	if err := validation.ValidateNickname(nickname, opts.NicknameMin, opts.NicknameMax); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	session.SetNickname(w, nickname)
	logger.Info("nickname_set", "nickname", nickname)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{
		"success":  "Nickname set.",
		"nickname": nickname,
	})
}

func signOut(w http.ResponseWriter, r *http.Request) {
	session.ClearNickname(w)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"success": "Signed out."})
}
