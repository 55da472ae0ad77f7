package response

import "github.com/gin-gonic/gin"

// Abort stops the handler chain with the same body ErrorResponse writes.
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(
		code,
		NewResponse(
			false,
			code,
			gin.H{
				"message": message,
			},
		))
}
