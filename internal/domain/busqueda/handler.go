package busqueda

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Jarot-Fierro/kardex-api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "secretaria", "tens", "jefe_some"))
	g.GET("/buscar-ficha", h.BuscarFicha)
	g.GET("/pacientes/:rut/movimientos", h.HistorialPaciente)
}

func (h *Handler) establecimientoID(c echo.Context) (uuid.UUID, error) {
	if eid := auth.EstablecimientoFromContext(c.Request().Context()); eid != "" {
		return uuid.Parse(eid)
	}
	if eid := c.QueryParam("establecimiento_id"); eid != "" {
		return uuid.Parse(eid)
	}
	return uuid.Nil, ErrSinEstablecimiento
}

func (h *Handler) BuscarFicha(c echo.Context) error {
	eid, err := h.establecimientoID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, ErrSinEstablecimiento.Error())
	}

	results, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"), eid, c.QueryParam("etapa"))
	if err != nil {
		switch {
		case errors.Is(err, ErrSinEstablecimiento):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrEtapaInvalida):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) HistorialPaciente(c echo.Context) error {
	eid, err := h.establecimientoID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, ErrSinEstablecimiento.Error())
	}

	hist, err := h.svc.HistorialPorRUT(c.Request().Context(), c.Param("rut"), eid)
	if err != nil {
		switch {
		case errors.Is(err, ErrPacienteNoEncontrado):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrSinEstablecimiento):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, hist)
}
