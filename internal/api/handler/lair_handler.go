package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/ports"
)

// LairHandler handles HTTP requests for lair operations.
type LairHandler struct {
	service ports.LairService
}

func NewLairHandler(service ports.LairService) *LairHandler {
	return &LairHandler{service: service}
}

// Create handles POST /lair.
//
// @Summary      Publish a lair
// @Tags         lairs
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        body  body      createLairRequest  true  "Lair details"
// @Success      201   {object}  lairResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /lair [post]
func (h *LairHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createLairRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lair, err := h.service.Create(c.Request().Context(), principal, ports.CreateLairInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Location:    domain.Coordinates{Lat: *req.Location.Lat, Lon: *req.Location.Lon},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toLairResponse(lair))
}

// Get handles GET /lair/:id.
//
// @Summary      Get a lair by id
// @Tags         lairs
// @Produce      json
// @Param        id   path      string  true  "Lair id"
// @Success      200  {object}  lairResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /lair/{id} [get]
func (h *LairHandler) Get(c echo.Context) error {
	id, err := domain.ParseIdentity(c.Param("id"))
	if err != nil {
		return domain.ErrLairNotFound
	}

	lair, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLairResponse(lair))
}

// Delete handles DELETE /lair/:id. Only the owner may delete a lair; a
// foreign or missing lair both yield 403.
//
// @Summary      Delete a lair
// @Tags         lairs
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        id   path  string  true  "Lair id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /lair/{id} [delete]
func (h *LairHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	id, err := domain.ParseIdentity(c.Param("id"))
	if err != nil {
		return domain.ErrForbidden
	}

	if err := h.service.Delete(c.Request().Context(), principal, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
