package establecimiento

import (
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
	read := api.Group("", auth.RequireRole("admin", "secretaria", "tens", "jefe_some"))
	read.GET("/establecimientos", h.ListEstablecimientos)
	read.GET("/establecimientos/:id", h.GetEstablecimiento)
	read.GET("/establecimientos/:id/sectores", h.ListSectores)
	read.GET("/establecimientos/:id/servicios", h.ListServicios)
	read.GET("/establecimientos/:id/profesionales", h.ListProfesionales)

	// Structural changes stay with administration
	write := api.Group("", auth.RequireRole("admin", "jefe_some"))
	write.POST("/establecimientos", h.CreateEstablecimiento)
	write.PUT("/establecimientos/:id", h.UpdateEstablecimiento)
	write.POST("/establecimientos/:id/sectores", h.CreateSector)
	write.POST("/establecimientos/:id/servicios", h.CreateServicio)
	write.POST("/establecimientos/:id/profesionales", h.CreateProfesional)
}

func (h *Handler) CreateEstablecimiento(c echo.Context) error {
	var e Establecimiento
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateEstablecimiento(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetEstablecimiento(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetEstablecimiento(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "establecimiento no encontrado")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) UpdateEstablecimiento(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var e Establecimiento
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.ID = id
	if err := h.svc.UpdateEstablecimiento(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListEstablecimientos(c echo.Context) error {
	pg := pagination.FromContext(c)
	ests, total, err := h.svc.ListEstablecimientos(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ests, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateSector(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var s Sector
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.EstablecimientoID = id
	if err := h.svc.CreateSector(c.Request().Context(), &s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) ListSectores(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sectores, err := h.svc.ListSectores(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sectores)
}

func (h *Handler) CreateServicio(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sc ServicioClinico
	if err := c.Bind(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sc.EstablecimientoID = id
	if err := h.svc.CreateServicio(c.Request().Context(), &sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *Handler) ListServicios(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	servicios, err := h.svc.ListServicios(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, servicios)
}

func (h *Handler) CreateProfesional(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Profesional
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.EstablecimientoID = &id
	if err := h.svc.CreateProfesional(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListProfesionales(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	profs, err := h.svc.ListProfesionales(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profs)
}
