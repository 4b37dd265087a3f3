package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temcen/movierec/internal/validation"
)

// ValidationMiddleware checks request bodies against JSON schemas before
// they reach the handlers.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

func (vm *ValidationMiddleware) ValidateRating() gin.HandlerFunc {
	return vm.validateRequestBody(validation.SchemaRating)
}

func (vm *ValidationMiddleware) ValidateTag() gin.HandlerFunc {
	return vm.validateRequestBody(validation.SchemaTag)
}

func (vm *ValidationMiddleware) ValidateCompare() gin.HandlerFunc {
	return vm.validateRequestBody(validation.SchemaCompare)
}

func (vm *ValidationMiddleware) validateRequestBody(schemaName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			vm.sendValidationError(c, "BODY_READ_ERROR", "Failed to read request body")
			return
		}

		// Restore request body for downstream handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			vm.sendValidationError(c, "EMPTY_BODY", "Request body is required")
			return
		}

		// Malformed JSON is left to the handler's binding error
		result := vm.validator.Validate(schemaName, bodyBytes)
		if !result.Valid && !isParseFailure(result) {
			apiError := result.ToAPIError()
			if errorObj, ok := apiError["error"].(map[string]interface{}); ok {
				errorObj["request_id"] = c.GetString("request_id")
				errorObj["path"] = c.Request.URL.Path
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, apiError)
			return
		}

		c.Next()
	}
}

func isParseFailure(result *validation.ValidationResult) bool {
	return len(result.Errors) == 1 && result.Errors[0].Field == "validation"
}

func (vm *ValidationMiddleware) sendValidationError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"code":       code,
			"message":    message,
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		},
	})
}
