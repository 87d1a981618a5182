package scheduling

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments/precheck", h.Precheck)
	api.POST("/appointments", h.BookAppointment)
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments/:id/cancel", h.CancelAppointment)
	api.POST("/appointments/:id/complete", h.CompleteAppointment, auth.RequireRole("staff"))
}

type precheckRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type bookRequest struct {
	Date  string  `json:"date"`
	Time  string  `json:"time"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type precheckResponse struct {
	Valid      bool              `json:"valid"`
	Violations []violationDetail `json:"violations"`
}

// Precheck handles POST /appointments/precheck. The answer is advisory.
func (h *Handler) Precheck(c echo.Context) error {
	var req precheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	vs := h.svc.Precheck(req.Date, req.Time)
	return c.JSON(http.StatusOK, precheckResponse{
		Valid:      len(vs) == 0,
		Violations: describe(vs),
	})
}

// BookAppointment handles POST /appointments for the authenticated subject.
func (h *Handler) BookAppointment(c echo.Context) error {
	subjectID, err := subjectFrom(c)
	if err != nil {
		return err
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.svc.Book(c.Request().Context(), subjectID, req.Date, req.Time, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

// ListAppointments handles GET /appointments.
func (h *Handler) ListAppointments(c echo.Context) error {
	subjectID, err := subjectFrom(c)
	if err != nil {
		return err
	}
	var status Status
	if raw := c.QueryParam("status"); raw != "" {
		if status, err = ParseStatus(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), subjectID, status, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// GetAppointment handles GET /appointments/:id.
func (h *Handler) GetAppointment(c echo.Context) error {
	subjectID, err := subjectFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id, subjectID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// CancelAppointment handles POST /appointments/:id/cancel.
func (h *Handler) CancelAppointment(c echo.Context) error {
	subjectID, err := subjectFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Cancel(c.Request().Context(), id, subjectID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// CompleteAppointment handles POST /appointments/:id/complete (staff only).
func (h *Handler) CompleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Complete(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func subjectFrom(c echo.Context) (int64, error) {
	id, ok := auth.SubjectFromContext(c.Request().Context())
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "authenticated subject required")
	}
	return id, nil
}

type violationBody struct {
	Violations []violationDetail `json:"violations"`
}

func httpError(err error) error {
	if vs, ok := AsViolations(err); ok {
		return echo.NewHTTPError(statusFor(vs), violationBody{Violations: describe(vs)})
	}
	switch {
	case errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrMissingSubject):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// statusFor picks 409 when the slot or appointment state conflicts with the
// request and 422 for every other rule failure.
func statusFor(vs Violations) int {
	if vs.Has(DuplicateSlot) || vs.Has(AlreadyFinalized) {
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}
