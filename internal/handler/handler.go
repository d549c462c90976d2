package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/attribution"
	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
	"github.com/wiederlebendig/lead-attribution-service/internal/ratelimit"
	"github.com/wiederlebendig/lead-attribution-service/internal/service"
)

const (
	variantCookie       = "flow_variant"
	variantCookieMaxAge = 365 * 24 * 60 * 60
)

type Handler struct {
	eventService service.EventServicer
	leadService  service.LeadServicer
	spendSync    service.SpendSyncer
	nurturer     service.Nurturer
	cron         service.CronServicer
	assigner     *attribution.Assigner
	limiter      ratelimit.Limiter
	cronSecret   string
	router       *gin.Engine
	log          *zap.Logger
}

func NewHandler(
	eventService service.EventServicer,
	leadService service.LeadServicer,
	spendSync service.SpendSyncer,
	nurturer service.Nurturer,
	cron service.CronServicer,
	limiter ratelimit.Limiter,
	cronSecret string,
	log *zap.Logger,
) *Handler {
	h := &Handler{
		eventService: eventService,
		leadService:  leadService,
		spendSync:    spendSync,
		nurturer:     nurturer,
		cron:         cron,
		assigner:     attribution.NewAssigner(),
		limiter:      limiter,
		cronSecret:   cronSecret,
		router:       gin.Default(),
		log:          log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"https://www.wieder-lebendig.de"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Retry-After"},
	}))

	h.router.GET("/health", h.healthCheck)

	api := h.router.Group("/api")
	{
		api.POST("/events", rateLimited(h.limiter, h.log), h.trackEvent)
		api.GET("/variant", h.resolveVariant)
		api.POST("/leads", h.createLead)
	}

	admin := h.router.Group("/api/admin", cronAuth(h.cronSecret, h.log))
	{
		admin.GET("/ads/sync-spend", h.syncSpend)
		admin.POST("/ads/sync-spend", h.syncSpend)
		admin.POST("/leads/nurture", h.nurtureLeads)
		admin.GET("/metrics", h.getMetrics)
	}

	cron := h.router.Group("/api/cron", cronAuth(h.cronSecret, h.log))
	{
		cron.GET("/daily", h.runDailyCron)
		cron.POST("/daily", h.runDailyCron)
	}
}

// requestMeta derives the server-side attribution context from the request.
func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		Referrer:  c.GetHeader("Referer"),
		SelfQuery: c.Request.URL.Query(),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Host:      c.Request.Host,
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// trackEvent handles POST /api/events. The acknowledgement is independent of
// persistence: a queue failure never turns into a client error.
func (h *Handler) trackEvent(c *gin.Context) {
	var req dto.TrackEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.Err("invalid request"))
		return
	}

	h.eventService.Track(c.Request.Context(), &req, requestMeta(c))

	c.JSON(http.StatusAccepted, dto.OK(dto.TrackEventResponse{Received: true}))
}

// resolveVariant handles GET /api/variant. A fresh random assignment persists
// the choice in the flow_variant cookie and emits the randomized event; a
// reused or explicitly overridden variant emits nothing.
func (h *Handler) resolveVariant(c *gin.Context) {
	explicit := c.Query("variant")
	if explicit == "" {
		explicit = c.Query("v")
	}

	stored, _ := c.Cookie(variantCookie)

	variant, assigned := h.assigner.Resolve(explicit, stored)

	if assigned || stored != string(variant) {
		c.SetCookie(variantCookie, string(variant), variantCookieMaxAge, "/", "", false, false)
	}

	if assigned {
		meta := requestMeta(c)
		snap := attribution.Snapshot(meta.Referrer, meta.SelfQuery)
		snap.CampaignVariant = string(variant)

		h.eventService.Emit(c.Request.Context(), "variant_randomized", snap, c.Query("session_id"), map[string]interface{}{
			"variant": string(variant),
		})

		h.log.Info("Assigned flow variant",
			zap.String("variant", string(variant)))
	}

	c.JSON(http.StatusOK, dto.OK(dto.VariantResponse{
		Variant:  string(variant),
		Assigned: assigned,
	}))
}

// createLead handles POST /api/leads
func (h *Handler) createLead(c *gin.Context) {
	var req dto.CreateLeadRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid lead request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.Err("invalid request"))
		return
	}

	resp, err := h.leadService.Create(c.Request.Context(), &req, requestMeta(c))
	if err != nil {
		h.log.Error("Failed to create lead", zap.Error(err))
		// Public surface: generic message, no internal detail.
		c.JSON(http.StatusInternalServerError, dto.Err("could not process request"))
		return
	}

	c.JSON(http.StatusCreated, dto.OK(resp))
}

// syncSpend handles GET|POST /api/admin/ads/sync-spend
func (h *Handler) syncSpend(c *gin.Context) {
	days := 1
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, dto.Err("days must be a positive integer"))
			return
		}
		days = parsed
	}

	resp, err := h.spendSync.Sync(c.Request.Context(), days)
	if err != nil {
		h.log.Error("Spend sync failed", zap.Error(err))
		// Admin surface: the upstream error message is diagnostic, keep it.
		c.JSON(http.StatusBadGateway, dto.Err(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.OK(resp))
}

// nurtureLeads handles POST /api/admin/leads/nurture
func (h *Handler) nurtureLeads(c *gin.Context) {
	resp, err := h.nurturer.Run(c.Request.Context())
	if err != nil {
		h.log.Error("Nurture run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Err(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.OK(resp))
}

// getMetrics handles GET /api/admin/metrics
func (h *Handler) getMetrics(c *gin.Context) {
	var req dto.GetMetricsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid metrics request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.Err("invalid request"))
		return
	}

	resp, err := h.eventService.GetMetrics(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to get metrics",
			zap.Error(err),
			zap.String("event_type", req.EventType))
		c.JSON(http.StatusInternalServerError, dto.Err(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.OK(resp))
}

// runDailyCron handles GET|POST /api/cron/daily. The response shape is the
// cron contract itself, not the data/error envelope.
func (h *Handler) runDailyCron(c *gin.Context) {
	resp := h.cron.RunDaily(c.Request.Context())
	c.JSON(http.StatusOK, resp)
}
