package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/progress"
	"github.com/aredu/arcportal/core/user"
)

type progressApi struct {
	svc    *progress.Service
	usrSvc *user.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service, usrSvc *user.Service) {
	a := progressApi{svc: svc, usrSvc: usrSvc}

	pg := g.Group("/progress", jwt)
	pg.GET("/:studentID", a.retrieve)
	pg.PUT("/:studentID", a.setStage, capabilityMiddleware(user.CapSetStage))
}

func (api *progressApi) retrieve(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	studentID := c.Param("studentID")
	// students only see their own record
	if !ctxUsr.IsStaff() && studentID != ctxUsr.UID {
		return notFoundHTTPErr
	}
	prog, err := api.svc.Get(c.Request().Context(), studentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prog)
}

type SetStageRequest struct {
	Stage string `json:"stage" validate:"required"`
	Note  string `json:"note"`
}

func (api *progressApi) setStage(c echo.Context) error {
	data := new(SetStageRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	prog, err := api.svc.SetStage(c.Request().Context(), ctxUsr, c.Param("studentID"), data.Stage, data.Note)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prog)
}
