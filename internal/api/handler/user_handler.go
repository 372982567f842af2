package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/api/middleware"
	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

// UserHandler serves the user CRUD routes.
type UserHandler struct {
	users   ports.UserService
	auth    ports.AuthService
	cookies SessionCookies
	log     zerolog.Logger
}

func NewUserHandler(users ports.UserService, auth ports.AuthService, cookies SessionCookies, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, cookies: cookies, log: log}
}

// Lookup handles the overloaded GET /user: with username and password it
// finds the matching user, with only a username it checks availability.
//
// @Summary      Find user by credentials or check username availability
// @Tags         users
// @Produce      json
// @Param        username  query     string  true   "Username"
// @Param        password  query     string  false  "Password"
// @Success      200       {object}  domain.User
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/assignment/user [get]
func (h *UserHandler) Lookup(c echo.Context) error {
	username := c.QueryParam("username")
	password := c.QueryParam("password")

	switch {
	case username != "" && password != "":
		return h.findByCredentials(c, username, password)
	case username != "":
		return h.availability(c, username)
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "username is required"})
	}
}

// CheckUsername handles GET /user/availability.
//
// @Summary      Check username availability
// @Tags         users
// @Produce      json
// @Param        username  query     string  true  "Username"
// @Success      200       {object}  errorResponse  "present only when the username is taken"
// @Failure      400       {object}  errorResponse
// @Router       /api/assignment/user/availability [get]
func (h *UserHandler) CheckUsername(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "username is required"})
	}
	return h.availability(c, username)
}

// FindByCredentials handles POST /user/credentials.
//
// @Summary      Find user by credentials
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Credentials"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/assignment/user/credentials [post]
func (h *UserHandler) FindByCredentials(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.findByCredentials(c, req.Username, req.Password)
}

func (h *UserHandler) findByCredentials(c echo.Context, username, password string) error {
	user, err := h.users.FindByCredentials(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) availability(c echo.Context, username string) error {
	taken, err := h.users.UsernameTaken(c.Request().Context(), username)
	if err != nil {
		return err
	}
	if taken {
		return c.JSON(http.StatusOK, errorResponse{Error: usernameTakenMessage})
	}
	return c.NoContent(http.StatusOK)
}

// Get handles GET /user/:userId.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  domain.User
// @Failure      404     {object}  errorResponse
// @Router       /api/assignment/user/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Register handles POST /user. An ADMIN caller creates the account and gets
// a bare acknowledgment; anyone else is logged in as the new user.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New user"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/assignment/user [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	caller := middleware.Principal(c)
	in := ports.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if caller.IsAdmin() {
		in.Roles = req.Roles
	}

	ctx := c.Request().Context()
	user, err := h.users.Register(ctx, in)
	if err != nil {
		var ce *domain.ConstraintError
		if errors.As(err, &ce) {
			return c.JSON(http.StatusForbidden, errorResponse{Error: ce.Detail})
		}
		return err
	}

	if caller.IsAdmin() {
		return c.String(http.StatusOK, http.StatusText(http.StatusOK))
	}

	endPreviousSession(c, h.auth, h.log)
	handle, err := h.auth.Login(ctx, user, domain.StrategyLocal)
	if err != nil {
		return err
	}
	h.cookies.set(c, handle)
	return c.JSON(http.StatusOK, user)
}

// Unregister handles DELETE /user/:userId and ends the caller's session.
//
// @Summary      Delete a user and log out
// @Tags         users
// @Param        userId  path  string  true  "User id"
// @Success      200
// @Failure      404     {object}  errorResponse
// @Router       /api/assignment/user/{userId} [delete]
func (h *UserHandler) Unregister(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.users.Delete(ctx, c.Param("userId")); err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		return err
	}

	if err := h.auth.Logout(ctx, middleware.Handle(c), middleware.Principal(c)); err != nil {
		h.log.Warn().Err(err).Msg("revoke session after unregister")
	}
	h.cookies.clear(c)
	return c.NoContent(http.StatusOK)
}

// List handles GET /admin/user.
//
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.User
// @Failure      401
// @Router       /api/assignment/admin/user [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Update handles PUT /user/:userId. The password is never changed here.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId  path      string             true  "User id"
// @Param        body    body      updateUserRequest  true  "Fields to change"
// @Success      200     {object}  domain.WriteResult
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /api/assignment/user/{userId} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	caller := middleware.Principal(c)
	res, err := h.users.Update(c.Request().Context(), c.Param("userId"), req.changes(caller.IsAdmin()))
	if err != nil {
		var ce *domain.ConstraintError
		switch {
		case errors.As(err, &ce):
			return c.JSON(http.StatusForbidden, errorResponse{Error: ce.Detail})
		case isNotFound(err):
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /admin/user/:userId.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  domain.WriteResult
// @Failure      401
// @Failure      404     {object}  errorResponse
// @Router       /api/assignment/admin/user/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	res, err := h.users.Delete(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// bindAndValidate binds the JSON body into req. Malformed bodies are a 400,
// rule violations a 422.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidUserID)
}
