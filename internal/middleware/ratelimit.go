// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"mediacatalog/internal/models"
)

// window is the sliding log of one client's recent writes.
type window struct {
	mu    sync.Mutex
	stamp []time.Time
}

// prune drops timestamps at or before cutoff.
func (w *window) prune(cutoff time.Time) {
	keep := w.stamp[:0]
	for _, ts := range w.stamp {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	w.stamp = keep
}

// WriteLimiter limits mutating requests (POST, PUT, PATCH, DELETE) per client
// IP over a sliding window. Reads and preflights are never limited.
type WriteLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	proxied bool
	now     func() time.Time
	stopCh  chan struct{}
}

// NewWriteLimiter allows limit writes per period for each client. Clients are
// keyed by peer address; with trustProxy set, X-Forwarded-For and X-Real-IP
// are honored instead, which is only safe behind a proxy that overwrites
// them. It starts a goroutine that evicts idle clients until Stop is called.
func NewWriteLimiter(limit int, period time.Duration, trustProxy bool) *WriteLimiter {
	wl := &WriteLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		proxied: trustProxy,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				wl.evict()
			case <-wl.stopCh:
				return
			}
		}
	}()

	return wl
}

// Stop terminates the eviction goroutine.
func (wl *WriteLimiter) Stop() {
	close(wl.stopCh)
}

func (wl *WriteLimiter) entry(key string) *window {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	w, ok := wl.clients[key]
	if !ok {
		w = &window{}
		wl.clients[key] = w
	}
	return w
}

// allow records a write for key if it fits in the window. When it does not,
// the second result is how long until the oldest write leaves the window.
func (wl *WriteLimiter) allow(key string) (bool, time.Duration) {
	w := wl.entry(key)
	now := wl.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now.Add(-wl.period))
	if len(w.stamp) >= wl.limit {
		return false, w.stamp[0].Add(wl.period).Sub(now)
	}
	w.stamp = append(w.stamp, now)
	return true, 0
}

// evict removes clients with no write inside the window.
func (wl *WriteLimiter) evict() {
	cutoff := wl.now().Add(-wl.period)

	wl.mu.Lock()
	defer wl.mu.Unlock()

	for key, w := range wl.clients {
		w.mu.Lock()
		w.prune(cutoff)
		idle := len(w.stamp) == 0
		w.mu.Unlock()
		if idle {
			delete(wl.clients, key)
		}
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Middleware answers 429 with a Retry-After header once a client exceeds
// the write budget.
func (wl *WriteLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isWrite(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if ok, wait := wl.allow(clientIP(r, wl.proxied)); !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeJSON(w, http.StatusTooManyRequests, models.Result{Message: "too many write requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address. When trustProxy is set it
// prefers X-Forwarded-For and X-Real-IP set by a fronting proxy.
func clientIP(r *http.Request, trustProxy bool) string {
	if !trustProxy {
		return peerAddr(r)
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return peerAddr(r)
}

// peerAddr is the host part of the connection's remote address.
func peerAddr(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
