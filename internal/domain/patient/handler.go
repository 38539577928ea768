package patient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ptm/ptm/internal/platform/apperr"
	"github.com/ptm/ptm/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)

	api.GET("/patients/:id/tests", h.ListTests)
	api.POST("/patients/:id/tests", h.CreateTest)
	api.GET("/tests/:id", h.GetTest)
	api.PUT("/tests/:id", h.UpdateTest)
	api.DELETE("/patients/:id/tests/:testId", h.DeleteTest)
}

const dateLayout = "2006-01-02"

type patientRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
}

// patientSummary is the roster row shown in list views.
type patientSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	TestCount   int    `json:"test_count"`
}

type testRequest struct {
	TestName string `json:"test_name"`
	TestDate string `json:"test_date"`
	// Result is a pointer so a missing field is distinguishable from zero.
	Result            *float64 `json:"result"`
	IsWithinThreshold bool     `json:"is_within_threshold"`
}

// httpError maps the service's error kinds onto HTTP statuses.
func httpError(err error) *echo.HTTPError {
	switch {
	case apperr.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// confirmRequired rejects delete requests missing the explicit confirm flag,
// the API rendition of the UI's delete confirmation dialog.
func confirmRequired(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return echo.NewHTTPError(http.StatusBadRequest, "deletion must be confirmed with confirm=true")
	}
	return nil
}

func parseDOB(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperr.Validation("date of birth is required")
	}
	dob, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("date of birth must be formatted as %s", dateLayout)
	}
	return dob, nil
}

// bindTestRequest decodes a test payload. A wrong type on the result field
// gets its own message; anything else malformed is reported generically.
func bindTestRequest(c echo.Context, req *testRequest) error {
	err := c.Bind(req)
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		var ute *json.UnmarshalTypeError
		if errors.As(he.Internal, &ute) && ute.Field == "result" {
			return echo.NewHTTPError(http.StatusBadRequest, "test result must be numeric")
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
}

func parseTestDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperr.Validation("test date is required")
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("test date must be formatted as %s or RFC 3339", dateLayout)
	}
	return d, nil
}

// -- Patient handlers --

func (h *Handler) ListPatients(c echo.Context) error {
	patients := h.svc.Patients()
	summaries := make([]patientSummary, 0, len(patients))
	for _, p := range patients {
		summaries = append(summaries, patientSummary{
			ID:          p.ID,
			Name:        p.Name,
			DateOfBirth: p.DateOfBirth.Format(dateLayout),
			Gender:      p.Gender,
			TestCount:   p.TestCount(),
		})
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dob, err := parseDOB(req.DateOfBirth)
	if err != nil {
		return httpError(err)
	}
	p, err := h.svc.AddPatient(c.Request().Context(), req.Name, dob, req.Gender)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	current, err := h.svc.GetPatient(id)
	if err != nil {
		return httpError(err)
	}

	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dob, err := parseDOB(req.DateOfBirth)
	if err != nil {
		return httpError(err)
	}

	// Full-row overwrite on a detached copy: the roster entry only changes
	// once the write commits.
	updated := &Patient{
		ID:          current.ID,
		Name:        req.Name,
		DateOfBirth: dob,
		Gender:      req.Gender,
	}
	if err := h.svc.UpdatePatient(c.Request().Context(), updated); err != nil {
		return httpError(err)
	}

	p, err := h.svc.GetPatient(id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := confirmRequired(c); err != nil {
		return err
	}
	p, err := h.svc.GetPatient(id)
	if err != nil {
		return httpError(err)
	}
	if err := h.svc.DeletePatient(c.Request().Context(), p); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Test handlers --

func (h *Handler) ListTests(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.svc.GetPatient(id); err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListTests(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateTest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(id)
	if err != nil {
		return httpError(err)
	}

	var req testRequest
	if err := bindTestRequest(c, &req); err != nil {
		return err
	}
	if req.Result == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "test result is required")
	}
	date, err := parseTestDate(req.TestDate)
	if err != nil {
		return httpError(err)
	}

	t, err := h.svc.AddTest(c.Request().Context(), p, req.TestName, date, *req.Result, req.IsWithinThreshold)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	current, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	var req testRequest
	if err := bindTestRequest(c, &req); err != nil {
		return err
	}
	if req.Result == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "test result is required")
	}
	date, err := parseTestDate(req.TestDate)
	if err != nil {
		return httpError(err)
	}

	updated := &Test{
		ID:                current.ID,
		PatientID:         current.PatientID,
		TestName:          req.TestName,
		TestDate:          date,
		Result:            *req.Result,
		IsWithinThreshold: req.IsWithinThreshold,
	}
	if err := h.svc.UpdateTest(c.Request().Context(), updated); err != nil {
		return httpError(err)
	}

	t, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	patientID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	testID, err := parseID(c, "testId")
	if err != nil {
		return err
	}
	if err := confirmRequired(c); err != nil {
		return err
	}

	p, err := h.svc.GetPatient(patientID)
	if err != nil {
		return httpError(err)
	}
	t, err := h.svc.GetTest(c.Request().Context(), testID)
	if err != nil {
		return httpError(err)
	}
	if t.PatientID != p.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "test does not belong to patient")
	}

	if err := h.svc.DeleteTest(c.Request().Context(), p, t); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
