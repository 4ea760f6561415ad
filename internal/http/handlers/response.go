// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints. Handlers
// never write error bodies themselves: fail() records the failure on the Gin
// context and aborts, and middleware.ErrorHandler renders it as the standard
// error record. That keeps one body shape, one status mapping and one log
// line per failed request.
//
// Example error response (written by the dispatcher):
//
//	HTTP/1.1 404 Not Found
//	{
//	  "status": 404,
//	  "error": "Not Found",
//	  "message": "user 3f0c… not found",
//	  "path": "/api/v1/users/3f0c…",
//	  "timestamp": "2025-10-14T12:00:00Z"
//	}
//
// Example success response:
//
//	HTTP/1.1 201 Created
//	{ "id": "3f0c…", "name": "Ana", "version": 1 }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// fail records err as the request's terminal failure and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
