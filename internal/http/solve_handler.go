package http

import (
	"github.com/gin-gonic/gin"

	"github.com/spreadlabs/spread-engine/internal/http/httputil"
	"github.com/spreadlabs/spread-engine/internal/services/solver"
)

type SolveHandler struct {
	solverSvc *solver.Service
}

func NewSolveHandler(solverSvc *solver.Service) *SolveHandler {
	return &SolveHandler{solverSvc: solverSvc}
}

func (h *SolveHandler) Root() string {
	return "/solutions"
}

func (h *SolveHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/:id", h.getSolution)
}

// getSolution godoc
// @Summary Get a stored solution
// @Description Returns the result of a previous solve of the given instance.
// @Tags solutions
// @Produce json
// @Param id path string true "Instance id"
// @Success 200 {object} httputil.Response{data=domain.ResultDoc}
// @Failure 404 {object} httputil.Response
// @Failure 500 {object} httputil.Response
// @Router /api/v1/solutions/{id} [get]
func (h *SolveHandler) getSolution(c *gin.Context) {
	doc, err := h.solverSvc.GetSolution(c.Param("id"))
	if err != nil {
		httputil.InternalError(c, err.Error())
		return
	}
	if doc == nil {
		httputil.NotFound(c, "no solution for this instance")
		return
	}
	httputil.Success(c, doc)
}
