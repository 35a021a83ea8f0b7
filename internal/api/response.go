package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shodhmemory/engine/internal/model"
)

// Response is the engine's standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK sends a 200 with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created sends a 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Fail sends an error envelope, mapping a model.Kind (if err carries
// one) to the appropriate HTTP status.
func Fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch model.KindOf(err) {
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindInvalidInput:
		status = http.StatusBadRequest
	case model.KindCancelled:
		status = http.StatusGatewayTimeout
	case model.KindUnavailable:
		status = http.StatusServiceUnavailable
	case model.KindCapacity, model.KindDurability, model.KindIndexCorruption, model.KindLossyDecompress:
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{Success: false, Message: err.Error()})
}
