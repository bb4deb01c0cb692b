package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/spreadlabs/spread-engine/internal/domain"
	"github.com/spreadlabs/spread-engine/internal/http/httputil"
	"github.com/spreadlabs/spread-engine/internal/services/solver"
)

type InstanceHandler struct {
	solverSvc *solver.Service
}

func NewInstanceHandler(solverSvc *solver.Service) *InstanceHandler {
	return &InstanceHandler{solverSvc: solverSvc}
}

func (h *InstanceHandler) Root() string {
	return "/instances"
}

func (h *InstanceHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.submit)
	pub.GET("/:id/orders", h.listOrders)
	pub.GET("/:id/amms", h.listAmms)
	pub.GET("/:id/paths", h.listPaths)
	pub.GET("/:id/reachable", h.listReachable)
	pub.POST("/:id/solve", h.solve)
}

// SubmitResponse carries the derived id of an accepted instance
type SubmitResponse struct {
	// Instance id: first 16 hex chars of the SHA-256 of the submitted bytes
	ID string `json:"id" example:"9f86d081884c7d65"`

	// Number of orders in the instance
	Orders int `json:"orders" example:"3"`

	// Number of pools in the instance
	Amms int `json:"amms" example:"5"`
}

// submit godoc
// @Summary Submit a problem instance
// @Description Validates and stores an instance document (orders plus pool catalogue). Resubmitting identical bytes yields the same id.
// @Tags instances
// @Accept json
// @Produce json
// @Param instance body domain.InstanceDoc true "Instance document"
// @Success 201 {object} httputil.Response{data=SubmitResponse}
// @Failure 400 {object} httputil.Response
// @Failure 422 {object} httputil.Response
// @Router /api/v1/instances [post]
func (h *InstanceHandler) submit(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		httputil.BadRequest(c, "empty request body")
		return
	}

	id, inst, err := h.solverSvc.SubmitInstance(raw)
	if err != nil {
		// well-formed JSON violating the instance contract maps to 422,
		// anything undecodable to 400
		if errors.Is(err, domain.ErrInvalidInstance) {
			httputil.Unprocessable(c, err.Error())
		} else {
			httputil.BadRequest(c, err.Error())
		}
		return
	}

	httputil.Created(c, SubmitResponse{
		ID:     id,
		Orders: len(inst.Orders),
		Amms:   len(inst.Pools),
	})
}

// OrderInfo is the external view of one order in a stored instance
type OrderInfo struct {
	ID               string `json:"id"`
	SellToken        string `json:"sell_token"`
	BuyToken         string `json:"buy_token"`
	SellAmount       string `json:"sell_amount"`
	BuyAmount        string `json:"buy_amount"`
	AllowPartialFill bool   `json:"allow_partial_fill"`
	IsSellOrder      bool   `json:"is_sell_order"`

	// Limit price as a decimal string (sell per buy), diagnostic only
	LimitPrice string `json:"limit_price"`
}

// listOrders godoc
// @Summary List an instance's orders
// @Tags instances
// @Produce json
// @Param id path string true "Instance id"
// @Success 200 {object} httputil.Response{data=[]OrderInfo}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/instances/{id}/orders [get]
func (h *InstanceHandler) listOrders(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}

	orders := make([]OrderInfo, 0, len(inst.Orders))
	for _, o := range inst.Orders {
		orders = append(orders, OrderInfo{
			ID:               o.ID,
			SellToken:        string(o.SellToken),
			BuyToken:         string(o.BuyToken),
			SellAmount:       domain.FormatAmount(o.SellAmount),
			BuyAmount:        domain.FormatAmount(o.BuyAmount),
			AllowPartialFill: o.AllowPartialFill,
			IsSellOrder:      o.IsSellOrder,
			LimitPrice:       o.LimitPriceDecimal().String(),
		})
	}
	httputil.Success(c, orders)
}

// PoolInfo is the external view of one pool in a stored instance
type PoolInfo struct {
	ID       string `json:"id"`
	TokenA   string `json:"token_a"`
	TokenB   string `json:"token_b"`
	ReserveA string `json:"reserve_a"`
	ReserveB string `json:"reserve_b"`

	// Spot rate TokenB per TokenA before any execution, diagnostic only
	SpotRate string `json:"spot_rate"`
}

// listAmms godoc
// @Summary List an instance's pools
// @Tags instances
// @Produce json
// @Param id path string true "Instance id"
// @Success 200 {object} httputil.Response{data=[]PoolInfo}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/instances/{id}/amms [get]
func (h *InstanceHandler) listAmms(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	httputil.Success(c, poolInfos(inst.Pools))
}

// PathInfo describes one candidate route between two tokens
type PathInfo struct {
	// Route id: pool ids joined in hop order
	ID string `json:"id" example:"amm_1/amm_2"`

	// Token sequence from sell token to buy token
	Tokens []string `json:"tokens"`

	Hops int `json:"hops" example:"2"`
}

// listPaths godoc
// @Summary List candidate routes between two tokens
// @Tags instances
// @Produce json
// @Param id path string true "Instance id"
// @Param sell_token query string true "Sell token"
// @Param buy_token query string true "Buy token"
// @Success 200 {object} httputil.Response{data=[]PathInfo}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/instances/{id}/paths [get]
func (h *InstanceHandler) listPaths(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	sellToken, buyToken, ok := tokenPair(c)
	if !ok {
		return
	}

	paths := h.solverSvc.Paths(inst, sellToken, buyToken)
	infos := make([]PathInfo, 0, len(paths))
	for _, p := range paths {
		tokens := make([]string, len(p.Tokens))
		for i, t := range p.Tokens {
			tokens[i] = string(t)
		}
		infos = append(infos, PathInfo{ID: p.ID(), Tokens: tokens, Hops: p.Hops()})
	}
	httputil.Success(c, infos)
}

// listReachable godoc
// @Summary List pools reachable on any route between two tokens
// @Tags instances
// @Produce json
// @Param id path string true "Instance id"
// @Param sell_token query string true "Sell token"
// @Param buy_token query string true "Buy token"
// @Success 200 {object} httputil.Response{data=[]PoolInfo}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response
// @Router /api/v1/instances/{id}/reachable [get]
func (h *InstanceHandler) listReachable(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	sellToken, buyToken, ok := tokenPair(c)
	if !ok {
		return
	}
	httputil.Success(c, poolInfos(h.solverSvc.ReachablePools(inst, sellToken, buyToken)))
}

// solve godoc
// @Summary Solve a stored instance
// @Description Runs the execution optimizer over every order and stores the result under the instance id.
// @Tags solutions
// @Produce json
// @Param id path string true "Instance id"
// @Success 200 {object} httputil.Response{data=domain.ResultDoc}
// @Failure 404 {object} httputil.Response
// @Failure 500 {object} httputil.Response
// @Router /api/v1/instances/{id}/solve [post]
func (h *InstanceHandler) solve(c *gin.Context) {
	doc, err := h.solverSvc.Solve(c.Param("id"))
	if err != nil {
		httputil.InternalError(c, err.Error())
		return
	}
	if doc == nil {
		httputil.NotFound(c, "unknown instance")
		return
	}
	httputil.Success(c, doc)
}

func (h *InstanceHandler) instance(c *gin.Context) (*domain.Instance, bool) {
	inst, err := h.solverSvc.GetInstance(c.Param("id"))
	if err != nil {
		httputil.InternalError(c, err.Error())
		return nil, false
	}
	if inst == nil {
		httputil.NotFound(c, "unknown instance")
		return nil, false
	}
	return inst, true
}

func tokenPair(c *gin.Context) (domain.Token, domain.Token, bool) {
	sellToken := c.Query("sell_token")
	buyToken := c.Query("buy_token")
	if sellToken == "" || buyToken == "" {
		httputil.BadRequest(c, "sell_token and buy_token are required")
		return "", "", false
	}
	return domain.Token(sellToken), domain.Token(buyToken), true
}

func poolInfos(pools []*domain.Pool) []PoolInfo {
	infos := make([]PoolInfo, 0, len(pools))
	for _, p := range pools {
		infos = append(infos, PoolInfo{
			ID:       p.ID,
			TokenA:   string(p.TokenA),
			TokenB:   string(p.TokenB),
			ReserveA: domain.FormatAmount(p.ReserveA),
			ReserveB: domain.FormatAmount(p.ReserveB),
			SpotRate: p.SpotRate(p.TokenA).String(),
		})
	}
	return infos
}
