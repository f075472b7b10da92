package domain

import "github.com/gin-gonic/gin"

type BackendHttpGetHandler interface {
	// Write an error back to the client.
	WriteError(c *gin.Context, status int, err error, description string)

	// Handle a message/request from the front-end.
	HandleRequest(*gin.Context)

	// Return the request handler responsible for handling a majority of requests.
	PrimaryHttpHandler() BackendHttpGetHandler
}
