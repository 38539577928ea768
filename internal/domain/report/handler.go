package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ptm/ptm/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports/tests-summary", h.TestsSummary)
}

const dateLayout = "2006-01-02"

func (h *Handler) TestsSummary(c echo.Context) error {
	from, err := parseDate(c.QueryParam("from"), "from")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	to, err := parseDate(c.QueryParam("to"), "to")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rows, err := h.svc.GenerateReport(c.Request().Context(), from, to)
	if err != nil {
		switch {
		case apperr.IsValidation(err):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, apperr.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, rows)
}

func parseDate(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperr.Validation("%s date is required", name)
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("%s date must be formatted as %s", name, dateLayout)
	}
	return d, nil
}
