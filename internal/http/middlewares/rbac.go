package middlewares

import (
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole is the endpoint gate. It runs after RequireAuth; per-resource
// checks happen later in the services.
func RequireRole(allowed ...user.Role) gin.HandlerFunc {
	set := make(map[user.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(c *gin.Context) {
		u, ok := UserFromContext(c)
		if !ok {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if _, ok := set[u.Role]; !ok {
			abortError(c, http.StatusForbidden, "forbidden", "Your role cannot perform this action")
			return
		}
		c.Next()
	}
}
