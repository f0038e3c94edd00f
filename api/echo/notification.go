package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
)

type notificationApi struct {
	svc    *notification.Service
	usrSvc *user.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, usrSvc *user.Service) {
	a := notificationApi{svc: svc, usrSvc: usrSvc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", a.recent)
	ng.PUT("/:id/seen", a.markSeen)
}

func (api *notificationApi) recent(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	notifs, err := api.svc.Recent(c.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markSeen(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	if err := api.svc.MarkSeen(c.Request().Context(), ctxUsr, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
