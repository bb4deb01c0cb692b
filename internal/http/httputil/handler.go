package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is one mounted route tree. Root is the path prefix under the
// versioned API group; SetRoutes receives the public, private and admin
// groups already scoped to that prefix. All solver endpoints are public,
// the other groups exist for parity with the server wiring.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}
