package security

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// Probe fingerprints. Matching is on the lowercased path and query.
var attackPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

// Scanner tooling by User-Agent. Plain HTTP clients (curl and friends)
// stay allowed, healthchecks use them.
var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb",
	"scanner", "crawler", "spider", "scraper",
}

var unusualMethods = map[string]bool{
	"TRACE":   true,
	"TRACK":   true,
	"DEBUG":   true,
	"CONNECT": true,
}

// DetectionMetrics counts blocked probes and malformed client IPs.
type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidIPAttempts  int64
}

// Detector classifies obvious probe traffic and resolves client IPs
// behind trusted proxies.
type Detector struct {
	metrics        *DetectionMetrics
	trustedProxies []*net.IPNet
}

// NewDetector trusts loopback and the RFC 1918 ranges as proxy sources
// for forwarded headers.
func NewDetector() *Detector {
	return &Detector{
		metrics:        &DetectionMetrics{},
		trustedProxies: privateNetworks(),
	}
}

func privateNetworks() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("bad builtin CIDR " + cidr + ": " + err.Error())
		}
		nets = append(nets, network)
	}
	return nets
}

// DetectSuspiciousRequest reports whether the request looks like a probe.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	return d.SuspicionReason(r) != ""
}

// SuspicionReason classifies the request, returning a short reason for
// the block log or the empty string for clean traffic. A non-empty
// result counts toward the suspicious request metric.
func (d *Detector) SuspicionReason(r *http.Request) string {
	reason := classify(r)
	if reason != "" {
		atomic.AddInt64(&d.metrics.SuspiciousRequests, 1)
	}
	return reason
}

func classify(r *http.Request) string {
	// The path arrives decoded; the query needs decoding or encoded
	// probes (union%20select) slip through.
	haystack := strings.ToLower(r.URL.Path) + "\n" + strings.ToLower(r.URL.RawQuery)
	if decoded, err := url.QueryUnescape(r.URL.RawQuery); err == nil {
		haystack += "\n" + strings.ToLower(decoded)
	}
	for _, pattern := range attackPatterns {
		if strings.Contains(haystack, pattern) {
			return "attack pattern " + pattern
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, tool := range scannerAgents {
		if strings.Contains(agent, tool) {
			return "scanner user-agent " + tool
		}
	}

	if unusualMethods[r.Method] {
		return "unusual method " + r.Method
	}

	// Overflow attempts hide behind very long URLs.
	if len(r.URL.String()) > 2048 {
		return "oversized url"
	}

	// Both forwarding headers plus a deep proxy chain smells like header
	// manipulation.
	if r.Header.Get("X-Real-IP") != "" {
		if xff := r.Header.Get("X-Forwarded-For"); strings.Count(xff, ",") > 5 {
			return "forwarded header chain too deep"
		}
	}

	return ""
}

// ExtractClientIP resolves the originating client address. Forwarded
// headers are honored only when the direct peer is a trusted proxy;
// unparseable candidates count toward the invalid IP metric.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	direct, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		direct = r.RemoteAddr
	}

	peer := net.ParseIP(direct)
	if peer == nil {
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
		return direct
	}
	if !d.isTrustedProxy(peer) {
		return direct
	}

	// First parseable hop in X-Forwarded-For wins, then X-Real-IP.
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		hop = strings.TrimSpace(hop)
		if hop == "" {
			continue
		}
		if net.ParseIP(hop) != nil {
			return hop
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}

	return direct
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns a snapshot of the detection counters.
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.metrics.SuspiciousRequests),
		InvalidIPAttempts:  atomic.LoadInt64(&d.metrics.InvalidIPAttempts),
	}
}
