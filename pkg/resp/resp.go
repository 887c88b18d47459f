package resp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const statusSuccess = "success"

// OK writes {status:"success", data:data}.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "data": data})
}

// Doc writes a single document as {status, data:{data:doc}}.
func Doc(c *gin.Context, doc any) {
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "data": gin.H{"data": doc}})
}

func Created(c *gin.Context, doc any) {
	c.JSON(http.StatusCreated, gin.H{"status": statusSuccess, "data": gin.H{"data": doc}})
}

// List writes {status, results, data:{data:docs}}.
func List(c *gin.Context, docs any, results int) {
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "results": results, "data": gin.H{"data": docs}})
}

// Token writes the auth envelope {status, token, data:{user}}.
func Token(c *gin.Context, code int, token string, user any) {
	c.JSON(code, gin.H{"status": statusSuccess, "token": token, "data": gin.H{"user": user}})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail hands err to the error middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Error writes the failure envelope; extra keys (stack, error) are merged in.
func Error(c *gin.Context, code int, status, message string, extra gin.H) {
	body := gin.H{"status": status, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(code, body)
}
