package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"anonymchat/pkg/api/handlers"
	"anonymchat/pkg/config"
	"anonymchat/pkg/security"
)

// NewRouter assembles the public and admin route trees. The admin login and
// logout endpoints are registered before the gated /v1/admin subrouter so
// they stay reachable without a session; gorilla/mux matches routes in
// registration order.
func NewRouter(cfg *config.Config) http.Handler {
	min, max := cfg.NicknameBounds()
	handlers.Configure(handlers.Options{
		NicknameMin:     min,
		NicknameMax:     max,
		AdminUser:       cfg.Admin.Username,
		AdminPass:       cfg.Admin.Password,
		UploadMaxBytes:  cfg.UploadLimit(),
		AttachmentTypes: cfg.Uploads.AllowedTypes,
	})

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterSession(v1)
	handlers.RegisterMessages(v1)
	handlers.RegisterPolls(v1)

	v1.HandleFunc("/admin/login", handlers.AdminLogin).Methods(http.MethodPost)
	v1.HandleFunc("/admin/logout", handlers.AdminLogout).Methods(http.MethodPost)

	adm := v1.PathPrefix("/admin").Subrouter()
	adm.Use(security.RequireAdmin)
	handlers.RegisterAdmin(adm)

	return r
}
