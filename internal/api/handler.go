package api

import (
	"context"
	"errors"
	"time"

	"github.com/bobby-s-dev/countries-explorer/internal/search"
	"github.com/bobby-s-dev/countries-explorer/internal/services"
	"github.com/bobby-s-dev/countries-explorer/internal/weather"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Upstream is a remote client whose breaker state is reported on /metrics.
type Upstream interface {
	Name() string
	BreakerState() string
}

// SweepScheduler runs the session sweep and reports on it.
type SweepScheduler interface {
	ForceRun() int
	GetStatus() map[string]interface{}
}

type Handler struct {
	sessions  *services.SessionStore
	countries search.CountryQuerier
	weather   weather.Fetcher
	upstreams []Upstream
	scheduler SweepScheduler
	logger    *zap.Logger
}

type queryRequest struct {
	Query string `json:"query"`
}

type sortRequest struct {
	Order string `json:"order"`
}

type weatherToggleRequest struct {
	Capital string `json:"capital"`
	Code    string `json:"code"`
}

func NewHandler(sessions *services.SessionStore, countries search.CountryQuerier, fetcher weather.Fetcher, logger *zap.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		countries: countries,
		weather:   fetcher,
		logger:    logger,
	}
}

func (h *Handler) WithUpstreams(upstreams ...Upstream) *Handler {
	h.upstreams = append(h.upstreams, upstreams...)
	return h
}

func (h *Handler) WithScheduler(s SweepScheduler) *Handler {
	h.scheduler = s
	return h
}

// SearchCountries handles GET /api/v1/countries
func (h *Handler) SearchCountries(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": search.MsgEnterName,
		})
	}

	order, err := search.ParseSortOrder(c.Query("sort", string(search.Ascending)))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	h.logger.Info("Searching countries", zap.String("name", name), zap.String("sort", string(order)))

	controller := search.NewController(h.countries, h.logger)
	controller.SetQuery(name)
	if err := controller.SetSortOrder(order); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := wait(c.UserContext(), controller.Submit(c.UserContext())); err != nil {
		return err
	}

	state := controller.State()
	if state.Error != "" {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to search countries",
			"details": state.Error,
		})
	}

	visible := state.Visible()
	return c.JSON(fiber.Map{
		"query":      name,
		"sort_order": order,
		"count":      len(visible),
		"countries":  visible,
		"notice":     state.Notice(visible),
	})
}

// GetCurrentWeather handles GET /api/v1/weather/current
func (h *Handler) GetCurrentWeather(c *fiber.Ctx) error {
	city := c.Query("city")
	if city == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "City parameter is required",
		})
	}

	h.logger.Info("Fetching current weather", zap.String("city", city))

	panel := weather.NewPanel(h.weather, h.logger)
	if err := wait(c.UserContext(), panel.Load(c.UserContext(), city)); err != nil {
		return err
	}

	state := panel.State()
	if state.Status != weather.StatusReady {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": weather.NotFoundMessage,
		})
	}

	return c.JSON(state.Snapshot)
}

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	session := h.sessions.Create()
	h.logger.Info("Session created", zap.String("session", session.ID))
	return c.Status(fiber.StatusCreated).JSON(session.Snapshot())
}

// GetSession handles GET /api/v1/sessions/:id
func (h *Handler) GetSession(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(session.Snapshot())
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.Params("id")); err != nil {
		return sessionError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetQuery handles PUT /api/v1/sessions/:id/query
func (h *Handler) SetQuery(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session.SetQuery(req.Query)
	return c.JSON(session.Snapshot())
}

// SetSortOrder handles PUT /api/v1/sessions/:id/sort
func (h *Handler) SetSortOrder(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var req sortRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := session.SetSortOrder(search.SortOrder(req.Order)); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(session.Snapshot())
}

// Submit handles POST /api/v1/sessions/:id/search
func (h *Handler) Submit(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	if !c.QueryBool("wait", true) {
		session.Submit(context.Background())
		return c.Status(fiber.StatusAccepted).JSON(session.Snapshot())
	}

	if err := wait(c.UserContext(), session.Submit(c.UserContext())); err != nil {
		return err
	}
	return c.JSON(session.Snapshot())
}

// ToggleWeather handles POST /api/v1/sessions/:id/weather
func (h *Handler) ToggleWeather(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	var req weatherToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Country code is required")
	}

	if !c.QueryBool("wait", true) {
		session.ToggleWeather(context.Background(), req.Capital, req.Code)
		return c.Status(fiber.StatusAccepted).JSON(session.Snapshot())
	}

	if err := wait(c.UserContext(), session.ToggleWeather(c.UserContext(), req.Capital, req.Code)); err != nil {
		return err
	}
	return c.JSON(session.Snapshot())
}

// SweepSessions handles POST /api/v1/sessions/sweep
func (h *Handler) SweepSessions(c *fiber.Ctx) error {
	var swept int
	if h.scheduler != nil {
		swept = h.scheduler.ForceRun()
	} else {
		swept = h.sessions.Sweep()
	}

	h.logger.Info("Session sweep requested", zap.Int("swept", swept))
	return c.JSON(fiber.Map{
		"swept":    swept,
		"sessions": h.sessions.GetStats(),
	})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"sessions":  h.sessions.GetStats(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	breakers := make(map[string]string, len(h.upstreams))
	for _, u := range h.upstreams {
		breakers[u.Name()] = u.BreakerState()
	}

	stats := fiber.Map{
		"sessions": h.sessions.GetStats(),
		"breakers": breakers,
	}
	if h.scheduler != nil {
		stats["scheduler"] = h.scheduler.GetStatus()
	}

	return c.JSON(fiber.Map{
		"metrics":   stats,
		"timestamp": time.Now(),
	})
}

func (h *Handler) session(c *fiber.Ctx) (*services.Session, error) {
	session, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return nil, sessionError(err)
	}
	return session, nil
}

func sessionError(err error) error {
	if errors.Is(err, services.ErrSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	return err
}

// wait blocks until done is closed or the request goes away.
func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fiber.NewError(fiber.StatusServiceUnavailable, "Request cancelled")
	}
}

var startTime = time.Now()
