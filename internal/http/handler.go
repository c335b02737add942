package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parking-service/internal/http/middleware"
	"parking-service/internal/model"
	"parking-service/internal/repository"
	"parking-service/internal/service"
	"parking-service/internal/utils"
)

type Handler struct {
	gateService  *service.GateService
	frameService *service.FrameService
	slotRepo     *repository.SlotRepository
	sessionRepo  *repository.SessionRepository
	log          zerolog.Logger
}

func NewHandler(
	gateService *service.GateService,
	frameService *service.FrameService,
	slotRepo *repository.SlotRepository,
	sessionRepo *repository.SessionRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		gateService:  gateService,
		frameService: frameService,
		slotRepo:     slotRepo,
		sessionRepo:  sessionRepo,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware, internalMiddleware gin.HandlerFunc) {
	// Gate controllers authenticate with the shared internal token.
	gate := r.Group("/gate")
	gate.Use(internalMiddleware)
	{
		gate.POST("/entry", h.vehicleEntry)
		gate.POST("/exit", h.vehicleExit)
		gate.POST("/frame", h.processFrame)
	}

	// Operator reporting endpoints require a user token.
	protected := r.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/sessions", h.listSessions)
		protected.GET("/slots", h.listSlots)
	}
}

func (h *Handler) vehicleEntry(c *gin.Context) {
	var req struct {
		Plate       string `json:"plate" binding:"required"`
		VehicleType string `json:"vehicle_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	plate := utils.NormalizePlate(req.Plate)
	result, err := h.gateService.HandleEntry(c.Request.Context(), plate, strings.ToLower(req.VehicleType))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(statusCodeFor(result.Status), successResponse(result))
}

func (h *Handler) vehicleExit(c *gin.Context) {
	var req struct {
		Plate string `json:"plate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	plate := utils.NormalizePlate(req.Plate)
	result, err := h.gateService.HandleExit(c.Request.Context(), plate)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(statusCodeFor(result.Status), successResponse(result))
}

func (h *Handler) processFrame(c *gin.Context) {
	var req struct {
		Direction   string `json:"direction" binding:"required"`
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	direction := service.GateDirection(strings.ToLower(req.Direction))
	if direction != service.DirectionEntry && direction != service.DirectionExit {
		c.JSON(http.StatusBadRequest, errorResponse("direction must be entry or exit"))
		return
	}

	result, err := h.frameService.Process(c.Request.Context(), direction, req.ImageBase64)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) listSessions(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	filter := repository.SessionListFilter{}

	if plate := strings.TrimSpace(c.Query("plate")); plate != "" {
		normalized := strings.ToUpper(plate)
		filter.Plate = &normalized
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		s := model.SessionStatus(strings.ToUpper(status))
		filter.Status = &s
	}

	sessions, err := h.sessionRepo.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(sessions))
}

func (h *Handler) listSlots(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	slots, err := h.slotRepo.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	occupied, err := h.slotRepo.CountOccupied(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"slots":             slots,
		"occupied_by_class": occupied,
	}))
}

// statusCodeFor maps gate result statuses to HTTP codes. "exists" stays a
// 200: a repeat entry is idempotent, not a conflict the controller should
// alarm on.
func statusCodeFor(status string) int {
	switch status {
	case service.StatusInvalidPlate:
		return http.StatusBadRequest
	case service.StatusNotFound:
		return http.StatusNotFound
	case service.StatusFull:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, repository.ErrNoOpenSession):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, repository.ErrDuplicateSession):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
