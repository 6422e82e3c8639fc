package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"valsign/internal/i18n"
)

type rateWindow struct {
	count int
	until time.Time
}

// RateLimit caps requests per client IP to limit requests within each span.
// Limited requests get a 429 with a Retry-After header and the same
// localized detail body the handlers use, so API clients can surface it
// unchanged. Runs after the locale middleware.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*rateWindow)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			now := time.Now()

			mu.Lock()
			win, ok := windows[ip]
			if !ok || now.After(win.until) {
				if len(windows) >= 1024 {
					pruneExpired(windows, now)
				}
				win = &rateWindow{until: now.Add(per)}
				windows[ip] = win
			}
			if win.count >= limit {
				retryAfter := win.until.Sub(now)
				mu.Unlock()
				tooManyRequests(w, r, retryAfter)
				return
			}
			win.count++
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	locale := LocaleFromContext(r.Context())
	_ = json.NewEncoder(w).Encode(map[string]string{
		"detail": i18n.T(locale, i18n.MsgTooManyRequests),
	})
}

// pruneExpired drops windows whose span has passed. Called with the map
// lock held, only when the map has grown past its soft cap.
func pruneExpired(windows map[string]*rateWindow, now time.Time) {
	for ip, win := range windows {
		if now.After(win.until) {
			delete(windows, ip)
		}
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
