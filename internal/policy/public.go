package policy

import "strings"

// PublicEndpoint marks a path prefix reachable without identity proof,
// optionally restricted to specific HTTP methods (user self-signup and
// device-token registration are public only for creation).
type PublicEndpoint struct {
	Prefix  string
	Methods []string
}

// Matches reports whether the endpoint covers the given method and path.
// An empty method list covers every method.
func (p PublicEndpoint) Matches(method, path string) bool {
	if path != p.Prefix && !strings.HasPrefix(path, p.Prefix+"/") {
		return false
	}

	if len(p.Methods) == 0 {
		return true
	}

	for _, m := range p.Methods {
		if m == method {
			return true
		}
	}
	return false
}
