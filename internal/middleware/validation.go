package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

// MsgInvalidBody is returned when a JSON body cannot be decoded.
const MsgInvalidBody = "Invalid request body"

// BindJSON decodes the request body into obj. On failure it writes a 400
// and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleAPIError(c, apperrors.NewBadRequestError(MsgInvalidBody).WithDetails(err.Error()))
		return false
	}
	return true
}
