package movimiento

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
	g.POST("/movimientos/salida", h.Enviar)
	g.POST("/movimientos/recepcion", h.Recibir)
	g.POST("/movimientos/traspaso", h.Traspasar)
	g.GET("/movimientos/:id", h.GetMovimiento)
	g.GET("/movimientos/salidas", h.ListSalidas)
	g.GET("/movimientos/recepciones", h.ListRecepcionesPendientes)
	g.GET("/movimientos/transito", h.ListEnTransito)
	g.GET("/fichas/:id/movimientos", h.ListByFicha)
}

func (h *Handler) establecimientoID(c echo.Context) (uuid.UUID, error) {
	if eid := auth.EstablecimientoFromContext(c.Request().Context()); eid != "" {
		return uuid.Parse(eid)
	}
	if eid := c.QueryParam("establecimiento_id"); eid != "" {
		return uuid.Parse(eid)
	}
	return uuid.Nil, errors.New("establecimiento requerido")
}

func (h *Handler) Enviar(c echo.Context) error {
	var req EnvioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.EstablecimientoID == uuid.Nil {
		if eid, err := h.establecimientoID(c); err == nil {
			req.EstablecimientoID = eid
		}
	}

	resp, err := h.svc.Enviar(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrFichaEnTransito):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrFichaNoEncontrada):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrMismoServicio):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Recibir(c echo.Context) error {
	var req RecepcionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.EstablecimientoID == uuid.Nil {
		if eid, err := h.establecimientoID(c); err == nil {
			req.EstablecimientoID = eid
		}
	}

	m, err := h.svc.Recibir(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrYaRecibida):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNoEncontrado):
			return echo.NewHTTPError(http.StatusNotFound, "no hay un envio pendiente para esta ficha")
		case errors.Is(err, ErrFichaNoEncontrada):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Traspasar(c echo.Context) error {
	var req TraspasoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.EstablecimientoID == uuid.Nil {
		if eid, err := h.establecimientoID(c); err == nil {
			req.EstablecimientoID = eid
		}
	}

	m, err := h.svc.Traspasar(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrSinMovimientoPrevio) || errors.Is(err, ErrFichaNoEncontrada) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetMovimiento(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetMovimiento(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "movimiento no encontrado")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListSalidas(c echo.Context) error {
	eid, err := h.establecimientoID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "establecimiento requerido")
	}
	pg := pagination.FromContext(c)
	movs, total, err := h.svc.ListSalidas(c.Request().Context(), eid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(movs, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListRecepcionesPendientes(c echo.Context) error {
	eid, err := h.establecimientoID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "establecimiento requerido")
	}
	pg := pagination.FromContext(c)
	movs, total, err := h.svc.ListRecepcionesPendientes(c.Request().Context(), eid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(movs, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListEnTransito(c echo.Context) error {
	eid, err := h.establecimientoID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "establecimiento requerido")
	}
	pg := pagination.FromContext(c)
	movs, total, err := h.svc.ListEnTransito(c.Request().Context(), eid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(movs, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByFicha(c echo.Context) error {
	fichaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	movs, total, err := h.svc.ListByFicha(c.Request().Context(), fichaID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(movs, total, pg.Limit, pg.Offset))
}
