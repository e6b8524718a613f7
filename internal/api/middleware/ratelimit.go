package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов с одного IP
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	trusted  []netip.Prefix
	logger   Logger
	now      func() time.Time
}

// NewRateLimiter создает лимитер. trustedProxies - IP или CIDR балансировщиков,
// только от них принимается X-Forwarded-For.
func NewRateLimiter(requestsPerSecond float64, burst int, trustedProxies []string, logger Logger) (*RateLimiter, error) {
	trusted, err := ParseTrustedProxies(trustedProxies)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		trusted:  trusted,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// ParseTrustedProxies разбирает список адресов вида "10.0.0.1" или "10.0.0.0/8"
func ParseTrustedProxies(list []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = l.now()
	return v.limiter.AllowN(v.lastSeen, 1)
}

// Prune удаляет лимитеры IP, не обращавшихся дольше idle. Возвращает число удаленных.
func (l *RateLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Middleware отвечает 429, когда лимит IP исчерпан
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.clientIP(r)
		if !l.allow(ip) {
			l.logger.Warn("RateLimit: limit exceeded for ip=%s %s %s", ip, r.Method, r.URL.Path)
			handlers.RespondError(w, http.StatusTooManyRequests, "слишком много запросов, повторите позже")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP ключ лимита. По умолчанию это адрес прямого соединения.
// Если соединение пришло от доверенного прокси, берется самый правый недоверенный адрес из X-Forwarded-For.
func (l *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !l.isTrusted(peerAddr) {
		return peer
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(header, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return peer
		}
		if !l.isTrusted(addr) {
			return addr.Unmap().String()
		}
	}
	return peer
}

func (l *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
