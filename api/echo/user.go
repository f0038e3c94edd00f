package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/user"
)

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service) {
	a := userApi{svc: svc}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", a.login)
	ug.POST("/register", a.register)
	ug.POST("/password-reset-request", a.requestPasswordReset)
	ug.POST("/password-reset-confirm", a.confirmPasswordReset)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.GET("", a.query, staffMiddleware())
	ag.POST("", a.create, capabilityMiddleware(user.CapManageUsers))
	ag.GET("/me", a.retrieveSelf)
	ag.PUT("/me", a.updateSelf)
	ag.POST("/password-reset", a.sendPasswordReset, capabilityMiddleware(user.CapProcessResets))

	dg := ag.Group("/:uid", staffMiddleware())
	dg.GET("", a.retrieve)
	dg.PUT("/role", a.changeRole, capabilityMiddleware(user.CapManageUsers))
	dg.DELETE("", a.destroy, capabilityMiddleware(user.CapManageUsers))
}

func (api *userApi) login(c echo.Context) error {
	data := new(LoginRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := Authenticate(c.Request().Context(), data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) register(c echo.Context) error {
	data := new(user.NewUser)
	if err := c.Bind(data); err != nil {
		return err
	}
	// self-registration is student-only; staff accounts go through create
	data.Role = user.RoleStudent

	usr, err := api.svc.Register(c.Request().Context(), *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, usr)
}

func (api *userApi) create(c echo.Context) error {
	data := new(user.NewUser)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.svc)
	if err != nil {
		return err
	}
	usr, err := api.svc.Create(c.Request().Context(), ctxUsr, *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, usr)
}

func (api *userApi) query(c echo.Context) error {
	filter := user.QueryFilter{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
	}
	if filter.Role == "" && filter.Search == "" {
		res, err := api.svc.QueryAll(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, res)
	}
	res, err := api.svc.Filter(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (api *userApi) retrieveSelf(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.svc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ctxUsr)
}

func (api *userApi) updateSelf(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.svc)
	if err != nil {
		return err
	}
	data := new(user.UpdateUser)
	if err := c.Bind(data); err != nil {
		return err
	}
	usr, err := api.svc.Update(c.Request().Context(), ctxUsr.UID, *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieve(c echo.Context) error {
	usr, err := api.svc.GetByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usr)
}

func (api *userApi) changeRole(c echo.Context) error {
	data := new(RoleChangeRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.svc)
	if err != nil {
		return err
	}
	usr, err := api.svc.ChangeRole(c.Request().Context(), ctxUsr, c.Param("uid"), data.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.svc)
	if err != nil {
		return err
	}
	// ctxUser cannot delete themselves
	if c.Param("uid") == ctxUsr.UID {
		return forbiddenHTTPErr
	}
	if err := api.svc.Delete(c.Request().Context(), ctxUsr, c.Param("uid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (api *userApi) requestPasswordReset(c echo.Context) error {
	data := new(PasswordResetRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	api.svc.RequestPasswordReset(c.Request().Context(), data.Email)
	return c.NoContent(http.StatusAccepted)
}

func (api *userApi) sendPasswordReset(c echo.Context) error {
	data := new(PasswordResetRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.svc)
	if err != nil {
		return err
	}
	if err := api.svc.SendPasswordResetEmail(c.Request().Context(), ctxUsr, data.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

func (api *userApi) confirmPasswordReset(c echo.Context) error {
	data := new(PasswordResetConfirmRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.svc.ConfirmPasswordReset(c.Request().Context(), data.UID, data.Token, data.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true)
	return core.Validate.Struct(lr)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RoleChangeRequest struct {
	Role string `json:"role" validate:"required,knownrole"`
}

func (rr *RoleChangeRequest) Validate() error {
	rr.Role = core.CleanString(rr.Role, true)
	return core.Validate.Struct(rr)
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true)
	return core.Validate.Struct(pr)
}

type PasswordResetConfirmRequest struct {
	UID      string `json:"uid" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (pr *PasswordResetConfirmRequest) Validate() error {
	return core.Validate.Struct(pr)
}
