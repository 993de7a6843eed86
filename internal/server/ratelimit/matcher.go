package ratelimit

import "strings"

// unlimitedRoutes bypass per-endpoint limits entirely.
var unlimitedRoutes = map[string]bool{
	"GET /health": true,
}

// MatchEndpoint finds the endpoint configuration for a request. An exact path
// wins; otherwise the longest configured path ending in "/" that prefixes the
// request path is used, so "/resume/" covers "/resume/structure". It returns
// nil when nothing matches and a zero-limit config for unlimited routes.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimitedRoutes[method+" "+path] {
		return &EndpointConfig{Path: path, Method: method}
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}
