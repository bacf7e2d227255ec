package banner

import (
	"fmt"

	"anonymchat/pkg/config"
)

const banner = `
 █████╗ ███╗   ██╗ ██████╗ ███╗   ██╗██╗   ██╗███╗   ███╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔══██╗████╗  ██║██╔═══██╗████╗  ██║╚██╗ ██╔╝████╗ ████║██╔════╝██║  ██║██╔══██╗╚══██╔══╝
███████║██╔██╗ ██║██║   ██║██╔██╗ ██║ ╚████╔╝ ██╔████╔██║██║     ███████║███████║   ██║
██╔══██║██║╚██╗██║██║   ██║██║╚██╗██║  ╚██╔╝  ██║╚██╔╝██║██║     ██╔══██║██╔══██║   ██║
██║  ██║██║ ╚████║╚██████╔╝██║ ╚████║   ██║   ██║ ╚═╝ ██║╚██████╗██║  ██║██║  ██║   ██║
╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝  ╚═══╝   ╚═╝   ╚═╝     ╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// Print writes the startup banner with the effective runtime settings and a
// short endpoint cheat sheet.
func Print(cfg *config.Config, addr, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:    %s\n", addr)
	fmt.Printf("Data dir:  %s\n", cfg.Storage.DataDir)
	fmt.Printf("Uploads:   %s\n", cfg.Storage.UploadsDir)
	if version != "" {
		fmt.Printf("Version:   %s\n", version)
	}
	if cfg.Server.Engine != "" {
		fmt.Printf("Engine:    %s\n", cfg.Server.Engine)
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/session/nickname    - Pick a nickname (JSON: nickname)")
	fmt.Println("GET  /v1/messages            - Top-level messages, newest first")
	fmt.Println("POST /v1/messages            - Post a message (multipart form)")
	fmt.Println("GET  /v1/polls               - Open polls")
	fmt.Println("POST /v1/admin/login         - Admin sign-in")
	fmt.Println("GET  /docs/                  - API docs, GET /metrics - Prometheus")

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/session/nickname' -d '{\"nickname\":\"alice\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/messages'\n", addr)

	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		fmt.Println("\n== Production? =================================================")
		fmt.Println("Admin credentials are unset; moderation login is disabled.")
		fmt.Println("Set ADMIN_USERNAME and ADMIN_PASSWORD (or admin: in the config file).")
	}
	fmt.Println()
}
