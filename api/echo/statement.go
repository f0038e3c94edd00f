package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/statement"
	"github.com/aredu/arcportal/core/user"
)

type statementApi struct {
	svc    *statement.Service
	usrSvc *user.Service
}

func registerStatementAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *statement.Service, usrSvc *user.Service) {
	a := statementApi{svc: svc, usrSvc: usrSvc}

	sg := g.Group("/statements", jwt, staffMiddleware())
	sg.POST("", a.generate)
	sg.GET("", a.history)
}

func (api *statementApi) generate(c echo.Context) error {
	data := new(statement.GenerateRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	s, err := api.svc.Generate(c.Request().Context(), ctxUsr, *data)
	if err != nil {
		if err == statement.ErrGenerationFailed {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (api *statementApi) history(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	stmts, err := api.svc.History(c.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stmts)
}
