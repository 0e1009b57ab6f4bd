package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// The read API is the only surface exposed beyond the bot host. Each client
// IP gets a small steady rate with a short burst.
const (
	perClientRate  = rate.Limit(1)
	perClientBurst = 5
)

var (
	visitors   = make(map[string]*rate.Limiter)
	visitorsMu sync.Mutex

	exemptIPs = map[string]bool{
		"127.0.0.1": true, // co-located bot gateway
	}
)

func limiterFor(ip string) *rate.Limiter {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	if limiter, ok := visitors[ip]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(perClientRate, perClientBurst)
	visitors[ip] = limiter
	return limiter
}

// RateLimitMiddleware throttles requests per client IP. The bot gateway
// talks to the API from the same host and is exempt.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if exemptIPs[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !limiterFor(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
