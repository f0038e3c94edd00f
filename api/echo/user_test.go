package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/aredu/arcportal/core/application"
	"github.com/aredu/arcportal/core/audit"
	"github.com/aredu/arcportal/core/document"
	"github.com/aredu/arcportal/core/message"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/progress"
	"github.com/aredu/arcportal/core/statement"
	"github.com/aredu/arcportal/core/task"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
	blobsvc "github.com/aredu/arcportal/services/blob"
	emailsvc "github.com/aredu/arcportal/services/email"
	dummytext "github.com/aredu/arcportal/services/textgen/dummy"
	dummydb "github.com/aredu/arcportal/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}

func setupServer(t *testing.T) (*Server, *user.Service) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setupServer() failed: %v", err)
	}
	logger := nopLogger{}
	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	auditSvc := audit.NewService(dummydb.NewAuditRepository(db), hub, logger)
	notifSvc := notification.NewService(dummydb.NewNotificationRepository(db), hub, logger)
	progressSvc := progress.NewService(dummydb.NewProgressRepository(db), notifSvc, hub)
	usrSvc := user.NewService(dummydb.NewUserRepository(db), auditSvc, progressSvc, notifSvc, emailsvc.NewConsoleServiceMock(), logger)
	appSvc := application.NewService(dummydb.NewApplicationRepository(db), notifSvc, auditSvc, usrSvc, hub)
	docSvc := document.NewService(dummydb.NewDocumentRepository(db), blobsvc.NewDummyStore(), notifSvc, auditSvc, logger, hub)
	taskSvc := task.NewService(dummydb.NewTaskRepository(db), notifSvc, hub)
	msgSvc := message.NewService(dummydb.NewMessageRepository(db), notifSvc, usrSvc, hub)
	stmtSvc := statement.NewService(dummydb.NewStatementRepository(db), dummytext.NewService("draft"), logger)

	s := NewServer(Options{
		Addr:            ":0",
		Logger:          logger,
		UserSvc:         usrSvc,
		ApplicationSvc:  appSvc,
		ProgressSvc:     progressSvc,
		DocumentSvc:     docSvc,
		TaskSvc:         taskSvc,
		MessageSvc:      msgSvc,
		NotificationSvc: notifSvc,
		AuditSvc:        auditSvc,
		StatementSvc:    stmtSvc,
		Hub:             hub,
	})
	return s, usrSvc
}

func do(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, usr user.User) string {
	t.Helper()
	now := time.Now()
	token, err := GenerateToken(&Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   usr.UID,
			ExpiresAt: now.Add(time.Hour).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:        usr.Role,
		DisplayName: usr.DisplayName,
	})
	if err != nil {
		t.Fatalf("tokenFor() failed: %v", err)
	}
	return token
}

func registerStudent(t *testing.T, s *Server, email string) user.User {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/v1/users/register", "", echo.Map{
		"display_name":     "Jane Doe",
		"email":            email,
		"password":         "S3cret!pass",
		"password_confirm": "S3cret!pass",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	var usr user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
		t.Fatalf("decoding user failed: %v", err)
	}
	return usr
}

func createStaff(t *testing.T, svc *user.Service, email, role string) user.User {
	t.Helper()
	superAdmin := user.User{UID: "seed-sadm", Role: user.RoleSuperAdmin}
	usr, err := svc.Create(context.Background(), superAdmin, user.NewUser{
		DisplayName:     "Staff Member",
		Email:           email,
		Role:            role,
		Password:        "S3cret!pass",
		PasswordConfirm: "S3cret!pass",
	})
	if err != nil {
		t.Fatalf("createStaff() failed: %v", err)
	}
	return usr
}

func Test_userApi_registerAndLogin(t *testing.T) {
	s, _ := setupServer(t)

	// role in the payload is ignored; self-registration is student-only
	rec := do(t, s, http.MethodPost, "/v1/users/register", "", echo.Map{
		"display_name":     "Sneaky",
		"email":            "sneaky@test.cd",
		"role":             user.RoleSuperAdmin,
		"password":         "S3cret!pass",
		"password_confirm": "S3cret!pass",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var usr user.User
	_ = json.Unmarshal(rec.Body.Bytes(), &usr)
	assert.Equal(t, user.RoleStudent, usr.Role)

	// bad payload
	rec = do(t, s, http.MethodPost, "/v1/users/register", "", echo.Map{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// login
	rec = do(t, s, http.MethodPost, "/v1/users/login", "", echo.Map{"email": "sneaky@test.cd", "password": "S3cret!pass"})
	assert.Equal(t, http.StatusOK, rec.Code)
	var lr LoginResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &lr)
	assert.NotEmpty(t, lr.Token)

	rec = do(t, s, http.MethodPost, "/v1/users/login", "", echo.Map{"email": "sneaky@test.cd", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the token works against an authed endpoint
	rec = do(t, s, http.MethodGet, "/v1/users/me", lr.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_userApi_authorization(t *testing.T) {
	s, usrSvc := setupServer(t)

	student := registerStudent(t, s, "jane@test.cd")
	admin := createStaff(t, usrSvc, "ada@test.cd", user.RoleAdmin)
	superAdmin := createStaff(t, usrSvc, "sam@test.cd", user.RoleSuperAdmin)

	studentTok := tokenFor(t, student)
	adminTok := tokenFor(t, admin)
	superTok := tokenFor(t, superAdmin)

	// listing users is staff-only
	rec := do(t, s, http.MethodGet, "/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, s, http.MethodGet, "/v1/users", studentTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodGet, "/v1/users", adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// user management is super-admin-only
	rec = do(t, s, http.MethodPut, "/v1/users/"+student.UID+"/role", adminTok, echo.Map{"role": user.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodPut, "/v1/users/"+student.UID+"/role", superTok, echo.Map{"role": user.RoleAdmin})
	assert.Equal(t, http.StatusOK, rec.Code)

	// nobody deletes themselves
	rec = do(t, s, http.MethodDelete, "/v1/users/"+superAdmin.UID, superTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodDelete, "/v1/users/"+student.UID, superTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_taskApi_capability(t *testing.T) {
	s, usrSvc := setupServer(t)

	student := registerStudent(t, s, "jane@test.cd")
	admin := createStaff(t, usrSvc, "ada@test.cd", user.RoleAdmin)

	payload := echo.Map{"title": "Upload passport scan", "assigned_to": student.UID}
	rec := do(t, s, http.MethodPost, "/v1/tasks", tokenFor(t, student), payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/tasks", tokenFor(t, admin), payload)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created task.Task
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	assert.Equal(t, task.StatusTodo, created.Status)

	// the student sees and toggles their own task
	rec = do(t, s, http.MethodGet, "/v1/tasks", tokenFor(t, student), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPut, "/v1/tasks/"+created.ID+"/toggle", tokenFor(t, student), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_messageApi_unreadCount(t *testing.T) {
	s, usrSvc := setupServer(t)

	student := registerStudent(t, s, "jane@test.cd")
	admin := createStaff(t, usrSvc, "ada@test.cd", user.RoleAdmin)

	rec := do(t, s, http.MethodPost, "/v1/messages", tokenFor(t, admin), echo.Map{
		"receiver_id": student.UID,
		"content":     "please check your documents",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/messages/unread-count", tokenFor(t, student), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread": 1}`, rec.Body.String())
}

func Test_statementApi_staffOnly(t *testing.T) {
	s, usrSvc := setupServer(t)

	student := registerStudent(t, s, "jane@test.cd")
	admin := createStaff(t, usrSvc, "ada@test.cd", user.RoleAdmin)

	payload := echo.Map{"student_name": "Jane Doe", "course": "Computer Science"}
	rec := do(t, s, http.MethodPost, "/v1/statements", tokenFor(t, student), payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/statements", tokenFor(t, admin), payload)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var stmt statement.Statement
	_ = json.Unmarshal(rec.Body.Bytes(), &stmt)
	assert.Equal(t, "draft", stmt.Content)
}
