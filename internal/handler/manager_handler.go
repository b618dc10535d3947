package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clientdesk/internal/middleware"
	"clientdesk/internal/service"
)

// ManagerHandler serves staff user management.
type ManagerHandler struct {
	svc service.ManagerService
}

// NewManagerHandler creates a manager handler.
func NewManagerHandler(svc service.ManagerService) *ManagerHandler {
	return &ManagerHandler{svc: svc}
}

// DeleteManagerResponse reports how many clients moved to the successor.
type DeleteManagerResponse struct {
	Message      string `json:"message"`
	ClientsMoved int64  `json:"clients_moved"`
}

// ListManagers godoc
// @Summary List staff users
// @Tags managers
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of name or email"
// @Param sort_by query string false "id, name, email or is_active"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} model.Page[model.User]
// @Failure 403 {object} errors.ErrorResponse
// @Router /managers [get]
func (h *ManagerHandler) ListManagers(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	q, err := listQuery(c)
	if err != nil {
		return err
	}
	page, err := h.svc.List(c.Request().Context(), actor, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Options godoc
// @Summary Active managers pick-list
// @Tags managers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ManagerOption
// @Failure 403 {object} errors.ErrorResponse
// @Router /managers/options [get]
func (h *ManagerHandler) Options(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	options, err := h.svc.Options(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, options)
}

// GetManager godoc
// @Summary Get staff user by id
// @Tags managers
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /managers/{id} [get]
func (h *ManagerHandler) GetManager(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateManager godoc
// @Summary Create staff user
// @Tags managers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body service.CreateManagerInput true "User payload"
// @Success 201 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /managers [post]
func (h *ManagerHandler) CreateManager(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	var in service.CreateManagerInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	user, err := h.svc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateManager godoc
// @Summary Update staff user
// @Tags managers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body service.UpdateManagerInput true "Fields to change"
// @Success 200 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /managers/{id} [put]
func (h *ManagerHandler) UpdateManager(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in service.UpdateManagerInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	user, err := h.svc.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteManager godoc
// @Summary Delete a manager and hand its clients to a successor
// @Description Reassignment and deletion run in one transaction; nothing changes when either step fails.
// @Tags managers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body service.DeleteManagerInput true "Successor"
// @Success 200 {object} DeleteManagerResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /managers/{id} [delete]
func (h *ManagerHandler) DeleteManager(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in service.DeleteManagerInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	moved, err := h.svc.Delete(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DeleteManagerResponse{
		Message:      "manager deleted",
		ClientsMoved: moved,
	})
}

// ChangePassword godoc
// @Summary Replace a staff user's password
// @Tags managers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body service.ChangePasswordInput true "New password"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /managers/{id}/change-password [post]
func (h *ManagerHandler) ChangePassword(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in service.ChangePasswordInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	if err := h.svc.ChangePassword(c.Request().Context(), actor, id, in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "password updated",
	})
}

// ToggleActive godoc
// @Summary Flip a staff user's active flag
// @Tags managers
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /managers/{id}/toggle-active [post]
func (h *ManagerHandler) ToggleActive(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.ToggleActive(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
