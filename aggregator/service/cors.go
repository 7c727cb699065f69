package service

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yaron8/latency-metrics/aggregator/config"
)

// corsHandler answers preflight requests and decorates responses for
// browser clients. Any method and any request header are allowed.
type corsHandler struct {
	allowOrigins     []string
	allowAllOrigins  bool
	allowCredentials bool
	maxAge           string
}

func newCORSHandler(cfg config.CORSConfig) *corsHandler {
	h := &corsHandler{
		allowOrigins:     cfg.AllowOrigins,
		allowCredentials: cfg.AllowCredentials,
		maxAge:           "86400",
	}
	if cfg.MaxAge > 0 {
		h.maxAge = strconv.Itoa(cfg.MaxAge)
	}

	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			h.allowAllOrigins = true
			break
		}
	}
	return h
}

func (h *corsHandler) isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}

// handlePreflight writes a 204 echoing the requested method and headers.
func (h *corsHandler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	w.Header().Add("Vary", "Origin, Access-Control-Request-Method, Access-Control-Request-Headers")
	if !h.isOriginAllowed(origin) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.setOrigin(w, origin)
	w.Header().Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
	if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
		w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
	}
	w.Header().Set("Access-Control-Max-Age", h.maxAge)
	w.WriteHeader(http.StatusNoContent)
}

// applyHeaders adds CORS headers to a normal (non-preflight) response
func (h *corsHandler) applyHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || !h.isOriginAllowed(origin) {
		return
	}

	h.setOrigin(w, origin)
	w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
	w.Header().Add("Vary", "Origin")
}

func (h *corsHandler) setOrigin(w http.ResponseWriter, origin string) {
	// A literal * is not valid together with credentials.
	if h.allowAllOrigins && !h.allowCredentials {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	if h.allowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

func (h *corsHandler) isOriginAllowed(origin string) bool {
	if h.allowAllOrigins {
		return true
	}

	for _, allowed := range h.allowOrigins {
		if allowed == origin {
			return true
		}
		// Simple wildcard matching: *.example.com
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, allowed[1:]) {
			return true
		}
	}
	return false
}

func (h *corsHandler) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.isPreflight(r) {
			h.handlePreflight(w, r)
			return
		}
		h.applyHeaders(w, r)
		next.ServeHTTP(w, r)
	})
}
