package signal

import (
	"net/http"
	"path"
	"strings"
)

// CheckOrigin accepts requests whose Origin matches one of the allowed
// patterns. "*" allows everything; requests without an Origin header are
// non-browser clients and always pass.
func CheckOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return OriginAllowed(allowed, r.Header.Get("Origin"))
	}
}

func OriginAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	origin = strings.TrimRight(origin, "/")
	for _, pattern := range allowed {
		if pattern == "*" || strings.EqualFold(pattern, origin) {
			return true
		}
		if ok, err := path.Match(pattern, origin); err == nil && ok {
			return true
		}
	}
	return false
}
