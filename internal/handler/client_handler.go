package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clientdesk/internal/middleware"
	"clientdesk/internal/service"
)

// ClientHandler serves the client CRUD endpoints.
type ClientHandler struct {
	svc service.ClientService
}

// NewClientHandler creates a client handler.
func NewClientHandler(svc service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// ListClients godoc
// @Summary List visible clients
// @Description Managers only see their own clients. Higher roles see all clients plus the active manager pick-list.
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of name or email"
// @Param sort_by query string false "id, name or email"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} service.ClientListing
// @Failure 401 {object} errors.ErrorResponse
// @Router /clients [get]
func (h *ClientHandler) ListClients(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	listing, err := h.svc.List(c.Request().Context(), actor, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

// GetClient godoc
// @Summary Get client by id
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} model.Client
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	client, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// CreateClient godoc
// @Summary Create client
// @Description Managers always become the owner; higher roles must pass manager_id.
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body service.CreateClientInput true "Client payload"
// @Success 201 {object} model.Client
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	var in service.CreateClientInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	client, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// UpdateClient godoc
// @Summary Update client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Param client body service.UpdateClientInput true "Fields to change"
// @Success 200 {object} model.Client
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in service.UpdateClientInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	client, err := h.svc.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete client
// @Tags clients
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeManager godoc
// @Summary Reassign a client to another manager
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Param request body service.ChangeManagerInput true "New manager"
// @Success 200 {object} model.Client
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /clients/{id}/change-manager [post]
func (h *ClientHandler) ChangeManager(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in service.ChangeManagerInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	client, err := h.svc.ChangeManager(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}
