package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/task"
	"github.com/aredu/arcportal/core/user"
)

type taskApi struct {
	svc    *task.Service
	usrSvc *user.Service
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *task.Service, usrSvc *user.Service) {
	a := taskApi{svc: svc, usrSvc: usrSvc}

	tg := g.Group("/tasks", jwt)
	tg.POST("", a.create, capabilityMiddleware(user.CapCreateTasks))
	tg.GET("", a.query)
	tg.PUT("/:id/toggle", a.toggle)
	tg.DELETE("/:id", a.destroy, capabilityMiddleware(user.CapDeleteTasks))
}

func (api *taskApi) create(c echo.Context) error {
	data := new(task.NewTask)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	t, err := api.svc.Create(c.Request().Context(), ctxUsr, *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// query returns every task for staff, and the caller's own otherwise.
func (api *taskApi) query(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	if ctxUsr.IsStaff() {
		if studentID := c.QueryParam("student"); studentID != "" {
			res, err := api.svc.QueryByAssignee(c.Request().Context(), studentID)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, res)
		}
		res, err := api.svc.QueryAll(c.Request().Context(), ctxUsr)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, res)
	}
	res, err := api.svc.QueryByAssignee(c.Request().Context(), ctxUsr.UID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (api *taskApi) toggle(c echo.Context) error {
	t, err := api.svc.Toggle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(c.Request().Context(), ctxUsr, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
