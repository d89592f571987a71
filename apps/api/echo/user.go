package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core/user"
)

type userApi struct {
	svc  *user.Service
	auth *authenticator
}

func registerUserAPI(
	e *echo.Echo,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	svc *user.Service,
) {
	api := userApi{
		svc:  svc,
		auth: auth,
	}

	// un-authed endpoints
	e.POST("/register", api.register)
	e.POST("/login", api.login)

	// authed endpoints
	e.POST("/token-refresh", api.refreshToken, jwt)
	e.GET("/me", api.me, jwt)
	e.GET("/admin/users", api.query, jwt, adminMiddleware())
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.GenerateToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Message: "Login successful", Token: token, Role: usr.Role})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr.Profile())
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	users, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	profiles := make([]user.Profile, 0, len(users))
	for _, usr := range users {
		profiles = append(profiles, usr.Profile())
	}
	return ctx.JSON(http.StatusOK, profiles)
}

type (
	MessageResponse struct {
		Message string `json:"message"`
	}

	LoginResponse struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		Role    string `json:"role"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)
