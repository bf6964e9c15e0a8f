package server

import (
	"net/http"
	"strings"

	"ctchen222/Connect-Four/internal/api/response"
	"ctchen222/Connect-Four/internal/api/service"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// authMiddleware accepts a bearer token, or a token query parameter for
// websocket clients that cannot set headers.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "missing token")
			c.Abort()
			return
		}

		claims, err := s.userService.ParseToken(token)
		if err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}
