package ficha

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
	g.GET("/fichas", h.ListFichas)
	g.GET("/fichas/pasivadas", h.ListPasivadas)
	g.GET("/fichas/:id", h.GetFicha)
	g.POST("/fichas", h.CreateOrGetFicha)
	g.PATCH("/fichas/:id/pasivado", h.TogglePasivado)
	g.PUT("/fichas/:id/numero-tarjeta", h.AsignarNumero)
}

// establecimientoID resolves the scope: session claim first, query param
// as a fallback for admin tooling.
func establecimientoID(c echo.Context) (uuid.UUID, error) {
	if eid := auth.EstablecimientoFromContext(c.Request().Context()); eid != "" {
		return uuid.Parse(eid)
	}
	if eid := c.QueryParam("establecimiento_id"); eid != "" {
		return uuid.Parse(eid)
	}
	return uuid.Nil, ErrSinEstablecimiento
}

func (h *Handler) CreateOrGetFicha(c echo.Context) error {
	var body struct {
		PacienteID        uuid.UUID `json:"paciente_id"`
		EstablecimientoID uuid.UUID `json:"establecimiento_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.EstablecimientoID == uuid.Nil {
		if eid, err := establecimientoID(c); err == nil {
			body.EstablecimientoID = eid
		}
	}

	f, err := h.svc.CreateOrGetFicha(c.Request().Context(), body.PacienteID, body.EstablecimientoID)
	if err != nil {
		if errors.Is(err, ErrSinEstablecimiento) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetFicha(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := h.svc.GetFicha(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "ficha no encontrada")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) TogglePasivado(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pasivado, err := h.svc.TogglePasivado(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNoEncontrada) {
			return echo.NewHTTPError(http.StatusNotFound, "ficha no encontrada")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"pasivado": pasivado})
}

func (h *Handler) AsignarNumero(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Numero    int64 `json:"numero"`
		EsTarjeta bool  `json:"es_tarjeta"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	f, err := h.svc.AsignarNumero(c.Request().Context(), id, body.Numero, body.EsTarjeta)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoEncontrada):
			return echo.NewHTTPError(http.StatusNotFound, "ficha no encontrada")
		case errors.Is(err, ErrNumeroDuplicado):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNumeroInvalido):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListFichas(c echo.Context) error {
	eid, err := establecimientoID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "establecimiento requerido")
	}
	pg := pagination.FromContext(c)
	fichas, total, err := h.svc.ListFichas(c.Request().Context(), eid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(fichas, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPasivadas(c echo.Context) error {
	eid, err := establecimientoID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "establecimiento requerido")
	}
	pg := pagination.FromContext(c)
	fichas, total, err := h.svc.ListPasivadas(c.Request().Context(), eid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(fichas, total, pg.Limit, pg.Offset))
}
