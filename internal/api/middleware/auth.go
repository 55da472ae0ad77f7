package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ctchen222/tictactoe-ai/internal/api/response"
)

const playerIDKey = "playerID"

// TokenParser resolves a bearer token to a player id.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Auth requires a valid token in the Authorization header. Websocket clients
// cannot set headers, so a token query parameter is accepted as well.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if header := c.GetHeader("Authorization"); header != "" {
			scheme, rest, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				response.Abort(c, http.StatusUnauthorized, "authorization header must be a bearer token")
				return
			}
			token = strings.TrimSpace(rest)
		}
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing token")
			return
		}

		playerID, err := parser.ParseToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(playerIDKey, playerID)
		c.Next()
	}
}

// PlayerID returns the id stored by Auth.
func PlayerID(c *gin.Context) string {
	return c.GetString(playerIDKey)
}
