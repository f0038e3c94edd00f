package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/audit"
	"github.com/aredu/arcportal/core/user"
)

type auditApi struct {
	svc *audit.Service
}

func registerAuditAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *audit.Service) {
	a := auditApi{svc: svc}

	g.GET("/audit", a.query, jwt, capabilityMiddleware(user.CapViewAuditLog))
}

func (api *auditApi) query(c echo.Context) error {
	entries, err := api.svc.QueryAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
