package paciente

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Jarot-Fierro/kardex-api/internal/platform/auth"
	"github.com/Jarot-Fierro/kardex-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "secretaria", "tens", "jefe_some"))
	g.GET("/pacientes", h.ListPacientes)
	g.GET("/pacientes/:id", h.GetPaciente)
	g.GET("/pacientes/rut/:rut", h.GetPacienteByRUT)
	g.POST("/pacientes", h.CreatePaciente)
	g.PUT("/pacientes/:id", h.UpdatePaciente)
}

func (h *Handler) CreatePaciente(c echo.Context) error {
	var p Paciente
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePaciente(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPaciente(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPaciente(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "paciente no encontrado")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPacienteByRUT(c echo.Context) error {
	p, err := h.svc.GetPacienteByRUT(c.Request().Context(), c.Param("rut"))
	if err != nil {
		if errors.Is(err, ErrRUTInvalido) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "paciente no encontrado")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePaciente(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Paciente
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePaciente(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPacientes(c echo.Context) error {
	pg := pagination.FromContext(c)
	pacs, total, err := h.svc.ListPacientes(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(pacs, total, pg.Limit, pg.Offset))
}
