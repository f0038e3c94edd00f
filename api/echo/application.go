package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/application"
	"github.com/aredu/arcportal/core/user"
)

type applicationApi struct {
	svc    *application.Service
	usrSvc *user.Service
}

func registerApplicationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *application.Service, usrSvc *user.Service) {
	a := applicationApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("/applications", jwt)
	ag.POST("", a.create)
	ag.GET("", a.query)

	dg := ag.Group("/:id")
	dg.GET("", a.retrieve)
	dg.PUT("/status", a.updateStatus, capabilityMiddleware(user.CapUpdateAppStatus))
	dg.POST("/addendums", a.appendAddendum)
	dg.PUT("/documents/:docID/status", a.reviewDocument, capabilityMiddleware(user.CapReviewAppDocuments))
	dg.POST("/cancellation", a.requestCancellation)
	dg.PUT("/cancellation", a.reviewCancellation, capabilityMiddleware(user.CapReviewCancellation))
}

// SubmitApplicationRequest wraps the payload with the documents uploaded
// ahead of submission.
type SubmitApplicationRequest struct {
	application.NewApplication
	Documents []application.ApplicationDocument `json:"documents"`
}

func (api *applicationApi) create(c echo.Context) error {
	data := new(SubmitApplicationRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	app, err := api.svc.Create(c.Request().Context(), ctxUsr, ctxUsr.UID, data.NewApplication, data.Documents)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

// query returns every application for staff, and the caller's own otherwise.
func (api *applicationApi) query(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	if ctxUsr.IsStaff() {
		res, err := api.svc.QueryAll(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, res)
	}
	res, err := api.svc.QueryByStudent(c.Request().Context(), ctxUsr.UID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (api *applicationApi) retrieve(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	app, err := api.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	// students only see their own
	if !ctxUsr.IsStaff() && app.StudentID != ctxUsr.UID {
		return notFoundHTTPErr
	}
	return c.JSON(http.StatusOK, app)
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

func (api *applicationApi) updateStatus(c echo.Context) error {
	data := new(StatusUpdateRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	app, err := api.svc.UpdateStatus(c.Request().Context(), ctxUsr, c.Param("id"), data.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

func (api *applicationApi) appendAddendum(c echo.Context) error {
	data := new(application.NewAddendum)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	app, err := api.svc.AppendAddendum(c.Request().Context(), ctxUsr, c.Param("id"), *data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

func (api *applicationApi) reviewDocument(c echo.Context) error {
	data := new(StatusUpdateRequest)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	app, err := api.svc.ReviewDocument(c.Request().Context(), ctxUsr, c.Param("id"), c.Param("docID"), data.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

type CancellationRequestPayload struct {
	Reason string `json:"reason"`
}

func (api *applicationApi) requestCancellation(c echo.Context) error {
	data := new(CancellationRequestPayload)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	app, err := api.svc.RequestCancellation(c.Request().Context(), ctxUsr, c.Param("id"), data.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

type CancellationReviewPayload struct {
	Approve bool `json:"approve"`
}

func (api *applicationApi) reviewCancellation(c echo.Context) error {
	data := new(CancellationReviewPayload)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	app, err := api.svc.ReviewCancellation(c.Request().Context(), ctxUsr, c.Param("id"), data.Approve)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}
