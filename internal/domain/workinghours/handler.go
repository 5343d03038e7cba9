package workinghours

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	resolver *Resolver
}

func NewHandler(svc *Service, resolver *Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "scheduler", "front-desk"))
	readGroup.GET("/working-hours/:ownerKind/:ownerID", h.Get)
	readGroup.GET("/working-hours/:ownerKind/:ownerID/effective", h.GetEffective)

	writeGroup := api.Group("", auth.RequireRole("admin", "scheduler"))
	writeGroup.PUT("/working-hours/:ownerKind/:ownerID", h.SetPattern)
	writeGroup.DELETE("/working-hours/:ownerKind/:ownerID", h.Delete)
	writeGroup.PUT("/working-hours/:ownerKind/:ownerID/overrides/:date", h.SetOverride)
	writeGroup.DELETE("/working-hours/:ownerKind/:ownerID/overrides/:date", h.RemoveOverride)
}

func (h *Handler) owner(c echo.Context) (OwnerKind, uuid.UUID, error) {
	kind, err := ParseOwnerKind(c.Param("ownerKind"))
	if err != nil {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(c.Param("ownerID"))
	if err != nil {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid owner id")
	}
	return kind, id, nil
}

func (h *Handler) Get(c echo.Context) error {
	kind, id, err := h.owner(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(c.Request().Context(), kind, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetEffective(c echo.Context) error {
	kind, id, err := h.owner(c)
	if err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must match YYYY-MM-DD")
	}
	var clinicID *uuid.UUID
	if raw := c.QueryParam("clinic_id"); raw != "" {
		cid, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic_id")
		}
		clinicID = &cid
	}
	es, err := h.resolver.Resolve(c.Request().Context(), kind, id, date, clinicID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, es)
}

func (h *Handler) SetPattern(c echo.Context) error {
	kind, id, err := h.owner(c)
	if err != nil {
		return err
	}
	var req SetPatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SetPattern(c.Request().Context(), kind, id, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SetOverride(c echo.Context) error {
	kind, id, err := h.owner(c)
	if err != nil {
		return err
	}
	var o DateOverride
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o.Date = c.Param("date")
	rec, err := h.svc.SetOverride(c.Request().Context(), kind, id, o)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) RemoveOverride(c echo.Context) error {
	kind, id, err := h.owner(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.RemoveOverride(c.Request().Context(), kind, id, c.Param("date"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "override not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	kind, id, err := h.owner(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), kind, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
