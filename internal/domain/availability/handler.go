package availability

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docbook/docbook/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "staff", "doctor", "patient"))
	readGroup.GET("/doctors/:id/availability", h.ListByDoctor)

	writeGroup := api.Group("", auth.RequireRole("admin", "staff", "doctor"))
	writeGroup.POST("/doctors/:id/availability", h.CreateWindow)
	writeGroup.PUT("/availability/:id", h.UpdateWindow)
	writeGroup.DELETE("/availability/:id", h.DeleteWindow)
}

// windowRequest carries clock times as HH:MM strings.
type windowRequest struct {
	Weekday     int    `json:"weekday"`
	Start       string `json:"start"`
	End         string `json:"end"`
	SlotMinutes int    `json:"slot_minutes"`
}

func (req *windowRequest) toWindow(doctorID uuid.UUID) (*Window, error) {
	start, err := ParseClock(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(req.End)
	if err != nil {
		return nil, err
	}
	return &Window{
		DoctorID:    doctorID,
		Weekday:     time.Weekday(req.Weekday),
		StartMinute: start,
		EndMinute:   end,
		SlotMinutes: req.SlotMinutes,
	}, nil
}

func (h *Handler) CreateWindow(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w, err := req.toWindow(doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateWindow(c.Request().Context(), w); err != nil {
		return windowError(err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	items, err := h.svc.ListByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return windowError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.GetWindow(c.Request().Context(), id)
	if err != nil {
		return windowError(err)
	}
	var req windowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w, err := req.toWindow(existing.DoctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w.ID = id
	if err := h.svc.UpdateWindow(c.Request().Context(), w); err != nil {
		return windowError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWindow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteWindow(c.Request().Context(), id); err != nil {
		return windowError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func windowError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrWindowOverlap):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidWindow):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrStorage):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
