package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse define la estructura estándar para las respuestas de error.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// PageMeta acompaña a los listados paginados.
type PageMeta struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Count  int   `json:"count"`
	Total  int64 `json:"total,omitempty"`
}

// SendSuccess envía una respuesta exitosa con un payload de datos.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{"data": data})
}

// SendPage envía un listado junto a su paginación.
func SendPage(c *gin.Context, data interface{}, meta PageMeta) {
	c.JSON(http.StatusOK, gin.H{"data": data, "meta": meta})
}

// SendError envía una respuesta de error con un formato estandarizado.
func SendError(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"error": ErrorResponse{Message: message, Code: code},
	})
}

// --- Helpers específicos para errores comunes ---

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, "bad_request", message)
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, "not_found", message)
}

func SendConflict(c *gin.Context, message string) {
	SendError(c, http.StatusConflict, "conflict", message)
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, "internal", message)
}
