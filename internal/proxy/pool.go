package proxy

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// FailureCooldown is how long a failed proxy is skipped before it is tried again
const FailureCooldown = 5 * time.Minute

// ProxyPool manages a list of proxies with rotation and health checking
type ProxyPool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
	now     func() time.Time
}

// NewProxyPool creates a new ProxyPool. Empty entries are ignored.
func NewProxyPool(proxies []string) *ProxyPool {
	list := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p != "" {
			list = append(list, p)
		}
	}
	return &ProxyPool{
		proxies: list,
		failed:  make(map[string]time.Time),
		now:     time.Now,
	}
}

// Len returns the number of proxies in the pool
func (p *ProxyPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// GetNext returns the next healthy proxy from the pool
func (p *ProxyPool) GetNext() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failTime, ok := p.failed[proxy]; ok {
			if p.now().Sub(failTime) < FailureCooldown {
				if p.index == start {
					// every proxy is cooling down, hand out this one anyway
					return proxy
				}
				continue
			}
			delete(p.failed, proxy)
		}

		return proxy
	}
}

// MarkFailed marks a proxy as failed so it will be skipped for a while
func (p *ProxyPool) MarkFailed(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *ProxyPool) MarkHealthy(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

type ctxKey struct{}

// WithProxy returns a context that routes requests made with it through proxyURL
func WithProxy(ctx context.Context, proxyURL string) context.Context {
	if proxyURL == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, proxyURL)
}

// FromRequest is an http.Transport Proxy function that picks the proxy stored
// on the request context by WithProxy, falling back to the environment.
func FromRequest(req *http.Request) (*url.URL, error) {
	if p, ok := req.Context().Value(ctxKey{}).(string); ok && p != "" {
		return url.Parse(p)
	}
	return http.ProxyFromEnvironment(req)
}
