package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/userhub/identity-api/internal/core/ports"
)

// UserHandler handles HTTP requests for the identity lifecycle.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  domain.UserView
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.Register(c.Request().Context(), toRegisterInput(req))
	record("register", err)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/users/"+view.Username)
	return c.JSON(http.StatusCreated, view)
}

// List returns one page of users ordered by username.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "0-based page"  default(0)
// @Param        size  query     int  false  "page size"     default(5)
// @Success      200   {object}  domain.Page
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, size := 0, 0
	if err := echo.QueryParamsBinder(c).Int("page", &page).Int("size", &size).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and size must be integers")
	}

	result, err := h.service.List(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns one user.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  domain.UserView
// @Failure      401       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /api/users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Update changes the caller's own profile and, optionally, password.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string         true  "Username"
// @Param        body      body      updateRequest  true  "Profile fields; password requires oldPassword"
// @Success      200       {object}  domain.UserView
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      409       {object}  map[string]string
// @Router       /api/users/{username} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.Update(c.Request().Context(), actor, c.Param("username"), toUpdateInput(req))
	record("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Deactivate disables login for a user.
//
// @Summary      Deactivate a user
// @Tags         users
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{username}/deactivate [put]
func (h *UserHandler) Deactivate(c echo.Context) error {
	actor, err := ctxClaims(c)
	if err != nil {
		return err
	}

	_, err = h.service.Deactivate(c.Request().Context(), actor, c.Param("username"))
	record("deactivate", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Activate re-enables login for a user.
//
// @Summary      Activate a user
// @Tags         users
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{username}/activate [put]
func (h *UserHandler) Activate(c echo.Context) error {
	actor, err := ctxClaims(c)
	if err != nil {
		return err
	}

	_, err = h.service.Activate(c.Request().Context(), actor, c.Param("username"))
	record("activate", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete permanently removes a user. Admin only.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxClaims(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), actor, c.Param("id"))
	record("delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByCountry returns every user registered with a country.
//
// @Summary      Users of a country
// @Tags         countries
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Country name"
// @Success      200   {object}  countryUsersResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/countries/{name}/users [get]
func (h *UserHandler) ListByCountry(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid country name")
	}
	users, err := h.service.ListByCountry(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countryUsersResponse{Country: name, Users: users})
}
