package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/core/document"
	"github.com/aredu/arcportal/core/user"
)

type documentApi struct {
	svc    *document.Service
	usrSvc *user.Service
}

func registerDocumentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *document.Service, usrSvc *user.Service) {
	a := documentApi{svc: svc, usrSvc: usrSvc}

	sg := g.Group("/students/:studentID/documents", jwt)
	sg.GET("", a.query)
	sg.POST("", a.upload)
	sg.POST("/request", a.request, capabilityMiddleware(user.CapRequestDocuments))

	dg := g.Group("/documents/:id", jwt)
	dg.PUT("/approve", a.approve, capabilityMiddleware(user.CapReviewDocuments))
	dg.PUT("/reject", a.reject, capabilityMiddleware(user.CapReviewDocuments))
	dg.DELETE("", a.destroy, capabilityMiddleware(user.CapDeleteDocuments))
}

func (api *documentApi) query(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	studentID := c.Param("studentID")
	if !ctxUsr.IsStaff() && studentID != ctxUsr.UID {
		return notFoundHTTPErr
	}
	docs, err := api.svc.QueryByStudent(c.Request().Context(), studentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

// upload reads the file from a multipart form ("file" field, optional "type").
func (api *documentApi) upload(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	studentID := c.Param("studentID")
	if !ctxUsr.IsStaff() && studentID != ctxUsr.UID {
		return notFoundHTTPErr
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := api.svc.Upload(c.Request().Context(), ctxUsr, studentID, fh.Filename, c.FormValue("type"), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

type DocumentRequestPayload struct {
	Name string `json:"name" validate:"required"`
}

func (api *documentApi) request(c echo.Context) error {
	data := new(DocumentRequestPayload)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	doc, err := api.svc.Request(c.Request().Context(), ctxUsr, c.Param("studentID"), data.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

type ReviewPayload struct {
	AdminNote string `json:"admin_note"`
}

func (api *documentApi) approve(c echo.Context) error {
	return api.review(c, true)
}

func (api *documentApi) reject(c echo.Context) error {
	return api.review(c, false)
}

func (api *documentApi) review(c echo.Context, approve bool) error {
	data := new(ReviewPayload)
	if err := c.Bind(data); err != nil {
		return err
	}
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}

	var doc document.DocumentItem
	if approve {
		doc, err = api.svc.Approve(c.Request().Context(), ctxUsr, c.Param("id"), data.AdminNote)
	} else {
		doc, err = api.svc.Reject(c.Request().Context(), ctxUsr, c.Param("id"), data.AdminNote)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (api *documentApi) destroy(c echo.Context) error {
	ctxUsr, err := getContextUser(c, api.usrSvc)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(c.Request().Context(), ctxUsr, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
