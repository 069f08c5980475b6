package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ninepay-gateway/internal/logger"
	"ninepay-gateway/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CallbackPath is where 9Pay delivers payment results.
const CallbackPath = "/callbacks/ninepay"

// Tier is one token-bucket policy. Each caller gets its own bucket per tier.
type Tier struct {
	Name  string
	Limit rate.Limit
	Burst int
}

var (
	// 9Pay retries from a handful of addresses, so callbacks get headroom.
	CallbackTier = Tier{Name: "callback", Limit: 20, Burst: 40}
	// Payment creation and refunds reach the gateway.
	MutationTier = Tier{Name: "mutation", Limit: 2, Burst: 5}
	ReadTier     = Tier{Name: "read", Limit: 10, Burst: 20}
	ServiceTier  = Tier{Name: "service", Limit: 100, Burst: 200}
)

const (
	bucketIdleTTL = 3 * time.Minute
	sweepEvery    = time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keys buckets by caller identity and tier. Idle buckets are swept
// while serving, so no background goroutine is needed.
type Limiter struct {
	serviceKey string
	now        func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewLimiter builds a limiter. Requests carrying serviceKey in
// X-Service-Auth use ServiceTier; an empty key disables that tier.
func NewLimiter(serviceKey string) *Limiter {
	return &Limiter{
		serviceKey: serviceKey,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
	}
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := l.tierFor(r)
		identity := callerIdentity(r)

		ok, wait := l.allow(identity+":"+tier.Name, tier)
		if !ok {
			logger.FromCtx(r.Context()).Warn("Rate limit exceeded",
				zap.String("identity", identity),
				zap.String("tier", tier.Name),
			)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) allow(key string, tier Tier) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepEvery {
		l.sweepLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(tier.Limit, tier.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *Limiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) tierFor(r *http.Request) Tier {
	if l.serviceKey != "" && r.Header.Get("X-Service-Auth") == l.serviceKey {
		return ServiceTier
	}
	switch r.URL.Path {
	case CallbackPath:
		return CallbackTier
	case "/payments", "/refunds":
		if r.Method == http.MethodPost {
			return MutationTier
		}
	}
	return ReadTier
}

// callerIdentity prefers the authenticated merchant, then the remote address.
func callerIdentity(r *http.Request) string {
	if subject, ok := utils.GetMerchantSubject(r.Context()); ok {
		return "merchant:" + subject
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
