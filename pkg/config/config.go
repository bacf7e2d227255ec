package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		// Engine selects the serving transport: "nethttp" (default) or
		// "fasthttp".
		Engine string `yaml:"engine"`
		TLS    struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`
	Storage struct {
		// DataDir holds messages.json, polls.json and user_preferences.json.
		DataDir string `yaml:"data_dir"`
		// UploadsDir holds attachment and background image files, served
		// under /uploads/.
		UploadsDir string `yaml:"uploads_dir"`
	} `yaml:"storage"`
	Admin struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Session struct {
		NicknameMin int `yaml:"nickname_min"`
		NicknameMax int `yaml:"nickname_max"`
		// Cookie lifetimes in seconds. Defaults: one week for the nickname
		// cookie, one day for the admin session.
		NicknameMaxAge int `yaml:"nickname_max_age"`
		AdminMaxAge    int `yaml:"admin_max_age"`
	} `yaml:"session"`
	Uploads struct {
		MaxBytes     int64    `yaml:"max_bytes"`
		AllowedTypes []string `yaml:"allowed_types"`
	} `yaml:"uploads"`
	Security struct {
		CORS struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"security"`
	Reconcile struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"reconcile"`
	Logging struct {
		Level    string `yaml:"level"`
		AuditDir string `yaml:"audit_dir"`
	} `yaml:"logging"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// NicknameBounds returns the accepted nickname length range.
func (c *Config) NicknameBounds() (int, int) {
	min, max := c.Session.NicknameMin, c.Session.NicknameMax
	if min <= 0 {
		min = 3
	}
	if max <= 0 {
		max = 20
	}
	return min, max
}

// UploadLimit returns the attachment size cap in bytes.
func (c *Config) UploadLimit() int64 {
	if c.Uploads.MaxBytes > 0 {
		return c.Uploads.MaxBytes
	}
	return 10 << 20 // 10MB
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, dataDir string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dataPtr := flag.String("data", "./data", "Data directory for JSON stores")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dataPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	parseList := func(v string) []string {
		if v == "" {
			return nil
		}
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("ANONYMCHAT_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("ANONYMCHAT_ENGINE"); v != "" {
		envUsed = true
		cfg.Server.Engine = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("ANONYMCHAT_DATA_DIR"); v != "" {
		envUsed = true
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("ANONYMCHAT_UPLOADS_DIR"); v != "" {
		envUsed = true
		cfg.Storage.UploadsDir = v
	}
	// The admin credentials keep their historical names so existing
	// deployments keep working.
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		envUsed = true
		cfg.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		envUsed = true
		cfg.Admin.Password = v
	}
	if v := os.Getenv("ANONYMCHAT_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("ANONYMCHAT_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("ANONYMCHAT_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("ANONYMCHAT_UPLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			envUsed = true
			cfg.Uploads.MaxBytes = n
		}
	}
	if v := os.Getenv("ANONYMCHAT_RECONCILE_ENABLED"); v != "" {
		envUsed = true
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes":
			cfg.Reconcile.Enabled = true
		default:
			cfg.Reconcile.Enabled = false
		}
	}
	if v := os.Getenv("ANONYMCHAT_RECONCILE_CRON"); v != "" {
		envUsed = true
		cfg.Reconcile.Cron = v
	}
	if v := os.Getenv("ANONYMCHAT_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if c := os.Getenv("ANONYMCHAT_TLS_CERT"); c != "" {
		envUsed = true
		cfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("ANONYMCHAT_TLS_KEY"); k != "" {
		envUsed = true
		cfg.Server.TLS.KeyFile = k
	}
	return envUsed
}

// LoadEffective loads config from the given path (file) and applies
// environment overrides. It returns the effective config and whether env
// vars were used. A missing config file is not an error; env and flags can
// fully configure the server.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the ANONYMCHAT_CONFIG env var when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("ANONYMCHAT_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
