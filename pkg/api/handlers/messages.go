package handlers

import (
	"errors"
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

// multipartMemory bounds the in-memory portion of a parsed upload; larger
// file parts spill to temp files.
const multipartMemory = 4 << 20

// RegisterMessages registers the public message endpoints.
func RegisterMessages(r *mux.Router) {
	r.HandleFunc("/messages", listMessages).Methods(http.MethodGet)
	r.HandleFunc("/messages", createMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}/replies", listReplies).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id}/repost", repostMessage).Methods(http.MethodPost)
}

func listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := store.ListTopLevel()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	nicks := map[string]struct{}{}
	for _, m := range msgs {
		nicks[m.Nickname] = struct{}{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"messages":    scrubMessages(msgs),
		"preferences": preferenceOverlay(nicks),
	})
}

func listReplies(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	replies, err := store.ListReplies(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to load replies")
		return
	}
	nicks := map[string]struct{}{}
	for _, m := range replies {
		nicks[m.Nickname] = struct{}{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"replies":     scrubMessages(replies),
		"preferences": preferenceOverlay(nicks),
	})
}

func createMessage(w http.ResponseWriter, r *http.Request) {
	ident := session.FromRequest(r)
	if ident.Nickname == "" {
		utils.JSONError(w, http.StatusUnauthorized, "nickname required to post")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, opts.UploadMaxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if err := validation.ValidateContent(content); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg := models.Message{
		Nickname:  ident.Nickname,
		Content:   content,
		ParentID:  strings.TrimSpace(r.FormValue("parentId")),
		IPAddress: utils.ClientIP(r),
	}

	media := models.Media{VideoURL: strings.TrimSpace(r.FormValue("videoEmbedUrl"))}
	if media.VideoURL == "" {
		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			if opts.UploadMaxBytes > 0 && header.Size > opts.UploadMaxBytes {
				utils.JSONError(w, http.StatusBadRequest, "attachment exceeds size limit")
				return
			}
			mime := header.Header.Get("Content-Type")
			if err := validation.ValidateAttachmentType(mime, opts.AttachmentTypes); err != nil {
				utils.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			url, err := uploads.SaveAttachment(header.Filename, file)
			if err != nil {
				logger.Error("attachment_save_failed", "error", err.Error())
				utils.JSONError(w, http.StatusInternalServerError, "failed to store attachment")
				return
			}
			media.FileURL = url
			media.FileName = header.Filename
			media.FileType = mime
			if strings.HasPrefix(mime, "image/") {
				media.FilePreview = r.FormValue("filePreview")
			}
		}
	}
	msg.SetMedia(media)

	saved, err := store.AddMessage(msg)
	if err != nil {
		if media.FileURL != "" {
			uploads.Remove(media.FileURL)
		}
		switch {
		case errors.Is(err, store.ErrParentNotFound):
			utils.JSONError(w, http.StatusNotFound, "parent message not found")
		case errors.Is(err, store.ErrParentIsReply):
			utils.JSONError(w, http.StatusBadRequest, "replies cannot be nested")
		default:
			utils.JSONError(w, http.StatusInternalServerError, "failed to post message")
		}
		return
	}

	logger.Info("message_posted", "id", saved.ID, "nickname", saved.Nickname, "reply", saved.IsReply())
	saved.IPAddress = ""
	_ = utils.JSONWrite(w, http.StatusCreated, map[string]any{
		"success": "Message posted successfully!",
		"message": saved,
	})
}

func repostMessage(w http.ResponseWriter, r *http.Request) {
	ident := session.FromRequest(r)
	if ident.Nickname == "" {
		utils.JSONError(w, http.StatusUnauthorized, "nickname required to repost")
		return
	}
	id := mux.Vars(r)["id"]
	msg, ok, err := store.IncrementReposts(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to repost message")
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	msg.IPAddress = ""
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"success": "Message reposted!",
		"message": msg,
	})
}
