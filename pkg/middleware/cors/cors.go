package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-ID, Last-Event-ID"
	allowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	exposeHeaders = "Content-Disposition, X-Request-ID"
)

// policy matches request origins against exact entries and "https://*.domain" wildcards.
type policy struct {
	allowAll  bool
	exact     map[string]struct{}
	wildcards []wildcard
}

type wildcard struct {
	scheme string
	suffix string
}

func newPolicy(allowedOrigins []string) policy {
	p := policy{exact: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "*":
			p.allowAll = true
		case strings.Contains(origin, "://*."):
			scheme, host, _ := strings.Cut(origin, "://*")
			p.wildcards = append(p.wildcards, wildcard{scheme: scheme + "://", suffix: host})
		case origin != "":
			p.exact[origin] = struct{}{}
		}
	}
	if len(p.exact) == 0 && len(p.wildcards) == 0 {
		p.allowAll = true
	}
	return p
}

func (p policy) allows(origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, w := range p.wildcards {
		if strings.HasPrefix(origin, w.scheme) && strings.HasSuffix(origin, w.suffix) && len(origin) > len(w.scheme)+len(w.suffix) {
			return true
		}
	}
	return false
}

// New returns a CORS middleware for the configured origins. An empty list or "*" allows any
// origin; credentials are only advertised when the origin was explicitly listed.
func New(allowedOrigins []string) gin.HandlerFunc {
	p := newPolicy(allowedOrigins)

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && p.allows(origin):
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
		case origin != "" && p.allowAll:
			header.Set("Access-Control-Allow-Origin", origin)
		case origin == "" && p.allowAll:
			header.Set("Access-Control-Allow-Origin", "*")
		}

		header.Set("Access-Control-Allow-Headers", allowHeaders)
		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Expose-Headers", exposeHeaders)
		header.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
