package security

import (
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"anonymchat/pkg/logger"
	"anonymchat/pkg/logging"
	"anonymchat/pkg/session"
	"anonymchat/pkg/utils"
)

type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
}

// RequestGate returns the outer middleware: safe request logging, CORS, and
// per-client rate limiting. Clients are keyed by nickname when present so a
// busy NAT does not starve everyone behind it, otherwise by IP.
func RequestGate(cfg SecConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logging.LogRequest(r)

			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				// Cache preflight responses for 10 minutes to cut preflight traffic.
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// Liveness probes cannot carry cookies; never throttle them.
			if r.URL.Path == "/healthz" && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			id := session.FromRequest(r)
			key := id.Nickname
			if key == "" {
				key = utils.ClientIP(r)
			}
			if !limiters.Allow(key) {
				logger.Warn("rate_limited", "key", key, "path", r.URL.Path)
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates the admin subrouter on the admin-session cookie. The
// login endpoint itself is mounted outside this middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromRequest(r).Admin {
			logger.Warn("admin_request_forbidden", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusForbidden, "admin session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

type limiterPool struct {
	mu  sync.Mutex
	m   map[string]*rate.Limiter
	cfg SecConfig
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[key]; ok {
		return l
	}
	rps := p.cfg.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := p.cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[key] = l
	return l
}

func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}
