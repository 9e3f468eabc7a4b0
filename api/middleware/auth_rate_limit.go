package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/responses"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	pkgredis "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/redis"
)

// AuthLimiter counts attempts in a fixed window. *pkgredis.Client implements it.
type AuthLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (pkgredis.Throttle, error)
}

// AuthThrottle caps attempts on one credential route, per client address and
// per account email, within Window. A zero limit disables that dimension.
type AuthThrottle struct {
	Route      string
	Window     time.Duration
	PerIP      int
	PerAccount int
}

func (t AuthThrottle) active() bool {
	return t.Window > 0 && (t.PerIP > 0 || t.PerAccount > 0)
}

func (t AuthThrottle) route() string {
	if r := strings.ToLower(strings.TrimSpace(t.Route)); r != "" {
		return r
	}
	return "auth"
}

// AuthRateLimit throttles /api/auth/login and /api/auth/register. Blocked
// requests get 429 with Retry-After. When the counter store is unreachable
// the request is let through and the failure logged.
func AuthRateLimit(throttle AuthThrottle, limiter AuthLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !throttle.active() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if throttle.PerIP > 0 {
				if ip := remoteIP(r); ip != "" {
					key := pkgredis.AuthThrottleKey(throttle.route(), "ip", ip)
					if !checkThrottle(ctx, w, logg, limiter, throttle, key, throttle.PerIP, map[string]any{"ip": ip}) {
						return
					}
				}
			}

			if throttle.PerAccount > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if account := accountFingerprint(body); account != "" {
					key := pkgredis.AuthThrottleKey(throttle.route(), "acct", account)
					if !checkThrottle(ctx, w, logg, limiter, throttle, key, throttle.PerAccount, map[string]any{"account": account}) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkThrottle reports whether the request may continue. It has already
// written the response when it returns false.
func checkThrottle(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, limiter AuthLimiter, throttle AuthThrottle, key string, limit int, fields map[string]any) bool {
	res, err := limiter.Allow(ctx, key, int64(limit), throttle.Window)
	if err != nil {
		if logg != nil {
			logg.Error(logg.WithField(ctx, "route", throttle.route()), "auth.throttle.store_unavailable", err)
		}
		return true
	}
	if res.Allowed() {
		return true
	}

	retry := res.RetryAfter
	if retry <= 0 {
		retry = throttle.Window
	}
	if logg != nil {
		logFields := map[string]any{
			"route":       throttle.route(),
			"attempts":    res.Count,
			"limit":       limit,
			"retry_after": int(retry.Seconds()),
		}
		for k, v := range fields {
			logFields[k] = v
		}
		logg.Warn(logg.WithFields(ctx, logFields), "auth.throttle.blocked")
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(int(retry.Seconds()), 1)))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts. Please try again later."))
	return false
}

// remoteIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address.
func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// accountFingerprint hashes the lower-cased body email so raw addresses never
// land in Redis keys.
func accountFingerprint(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:16])
}
