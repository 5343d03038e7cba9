package availability

import (
	"errors"
	"net/http"
	"strconv"
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
	g := api.Group("", auth.RequireRole("admin", "scheduler", "front-desk"))
	g.GET("/availability/slots", h.Slots)
	g.GET("/availability/rooms", h.Rooms)
	g.GET("/rooms/:id/day-schedule", h.RoomDaySchedule)
	g.GET("/clinics/:id/day-schedule", h.ClinicDaySchedule)
}

func parseDate(c echo.Context) (time.Time, error) {
	d, err := time.Parse(workinghours.DateLayout, c.QueryParam("date"))
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "date must match YYYY-MM-DD")
	}
	return d, nil
}

func (h *Handler) Slots(c echo.Context) error {
	practID, err := uuid.Parse(c.QueryParam("practitioner_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid practitioner_id")
	}
	date, err := parseDate(c)
	if err != nil {
		return err
	}

	duration := 0
	if raw := c.QueryParam("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "duration must be a positive integer")
		}
	}
	includeRooms := c.QueryParam("include_rooms") == "true"

	result, err := h.svc.AvailableSlots(c.Request().Context(), practID, date, duration, includeRooms)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Rooms(c echo.Context) error {
	clinicID, err := uuid.Parse(c.QueryParam("clinic_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic_id")
	}
	date, err := parseDate(c)
	if err != nil {
		return err
	}

	rooms, err := h.svc.RoomsFreeForWindow(c.Request().Context(), clinicID, date,
		c.QueryParam("start_time"), c.QueryParam("end_time"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *Handler) RoomDaySchedule(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := parseDate(c)
	if err != nil {
		return err
	}
	sched, err := h.svc.DayScheduleForRoom(c.Request().Context(), roomID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sched)
}

func (h *Handler) ClinicDaySchedule(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := parseDate(c)
	if err != nil {
		return err
	}
	scheds, err := h.svc.DayScheduleForClinic(c.Request().Context(), clinicID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, scheds)
}
