package util

import (
	"net/http"
	"strings"
)

// ResolveBaseURL determines the origin used when building verification URIs.
// Precedence: explicitly configured public URL, then X-Forwarded-Host with
// X-Forwarded-Proto, then the Host header, then the fallback origin.
func ResolveBaseURL(r *http.Request, publicURL, fallback string) string {
	if publicURL != "" {
		return strings.TrimSuffix(publicURL, "/")
	}

	if host := headerValue(r, "X-Forwarded-Host"); host != "" {
		proto := headerValue(r, "X-Forwarded-Proto")
		if proto == "" {
			proto = requestScheme(r)
		}
		return proto + "://" + host
	}

	if r != nil && r.Host != "" {
		return requestScheme(r) + "://" + r.Host
	}

	return strings.TrimSuffix(fallback, "/")
}

// headerValue returns the first entry of a possibly comma-separated header.
func headerValue(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	v := r.Header.Get(name)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

func requestScheme(r *http.Request) string {
	if r != nil && r.TLS != nil {
		return "https"
	}
	return "http"
}
