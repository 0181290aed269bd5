package controllers

import "github.com/gin-gonic/gin"

// currentUserID pulls the authenticated user id set by AuthMiddleware.
func currentUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := value.(int)
	return id, ok
}

func ptr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
