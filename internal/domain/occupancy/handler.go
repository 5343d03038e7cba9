package occupancy

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/workinghours"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "scheduler"))
	g.GET("/occupancy", h.Get)
}

func (h *Handler) Get(c echo.Context) error {
	kind, err := ParseEntityKind(c.QueryParam("entity_kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(c.QueryParam("entity_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entity_id")
	}
	from, err := time.Parse(workinghours.DateLayout, c.QueryParam("start_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must match YYYY-MM-DD")
	}
	to, err := time.Parse(workinghours.DateLayout, c.QueryParam("end_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must match YYYY-MM-DD")
	}

	ctx := c.Request().Context()

	if c.QueryParam("detailed") == "true" {
		if kind != KindClinic {
			return echo.NewHTTPError(http.StatusBadRequest, "detailed breakdown is available for clinics only")
		}
		breakdown, err := h.svc.SummarizeDetailed(ctx, id, from, to)
		if err != nil {
			return h.mapError(err)
		}
		return c.JSON(http.StatusOK, breakdown)
	}

	if groupBy := c.QueryParam("group_by"); groupBy != "" {
		summaries, err := h.svc.SummarizeGrouped(ctx, kind, id, from, to, groupBy)
		if err != nil {
			return h.mapError(err)
		}
		return c.JSON(http.StatusOK, summaries)
	}

	summary, err := h.svc.Summarize(ctx, kind, id, from, to)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) mapError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
