package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/message"
	"github.com/aredu/arcportal/core/user"
)

type messageApi struct {
	svc    *message.Service
	usrSvc *user.Service
}

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *message.Service, usrSvc *user.Service) {
	a := messageApi{svc: svc, usrSvc: usrSvc}

	mg := g.Group("/messages", jwt)
	mg.POST("", a.send)
	mg.GET("/threads", a.threads)
	mg.GET("/threads/:counterpartyID", a.thread)
	mg.GET("/unread-count", a.unreadCount)
}

func (api *messageApi) send(c echo.Context) error {
	data := new(message.NewMessage)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	m, err := api.svc.Send(c.Request().Context(), ctxUsr, *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (api *messageApi) threads(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	threads, err := api.svc.Threads(c.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, threads)
}

// thread marks the viewer's unread messages in the conversation as read.
func (api *messageApi) thread(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	th, err := api.svc.Thread(c.Request().Context(), ctxUsr, c.Param("counterpartyID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, th)
}

func (api *messageApi) unreadCount(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	n, err := api.svc.UnreadCount(c.Request().Context(), ctxUsr.UID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}
