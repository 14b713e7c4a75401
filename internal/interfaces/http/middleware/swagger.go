package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls access to the API documentation endpoint.
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // require a valid JWT before serving docs
	AllowedIPs  []string // IPs or CIDR ranges; empty allows everyone
}

// SwaggerProtection guards the Swagger UI. A disabled endpoint answers 404
// so its existence is not advertised; otherwise the request must pass the
// IP whitelist (when set) and the JWT middleware (when required). Both
// checks may be combined.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	// Whitelist entries are parsed once up front.
	var allowedNets []*net.IPNet
	var allowedIPs []net.IP
	for _, ipStr := range cfg.AllowedIPs {
		if strings.Contains(ipStr, "/") {
			if _, network, err := net.ParseCIDR(ipStr); err == nil {
				allowedNets = append(allowedNets, network)
			}
		} else if ip := net.ParseIP(ipStr); ip != nil {
			allowedIPs = append(allowedIPs, ip)
		}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "API documentation is not available",
			})
			return
		}

		if len(cfg.AllowedIPs) > 0 {
			if !isIPAllowed(clientIP(c), allowedIPs, allowedNets) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":   "forbidden",
					"message": "Access to API documentation is restricted",
				})
				return
			}
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			jwtMiddleware(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

// clientIP resolves the caller's address, preferring gin's ClientIP which
// honors trusted proxy headers, falling back to the raw remote address.
func clientIP(c *gin.Context) net.IP {
	if addr := c.ClientIP(); addr != "" {
		if ip := net.ParseIP(addr); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}

	for _, allowedIP := range allowedIPs {
		if allowedIP.Equal(ip) {
			return true
		}
	}

	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}

	return false
}
