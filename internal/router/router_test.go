package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/service"
	"gorm.io/gorm/logger"
)

func setupRouterTest(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open("file:router-test?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := db.EnsureUser(context.Background(), gdb, "admin", "secret"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	dashboard := service.NewDashboardService(service.NewHabitStore(gdb), nil, 7)
	r := SetupRouter("test-secret", handler.NewAPI(gdb, dashboard))

	return r, func() {
		dashboard.Close()
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func TestPing(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rr.Code != http.StatusOK || !bytes.Contains(rr.Body.Bytes(), []byte("pong")) {
		t.Fatalf("unexpected ping response %d %s", rr.Code, rr.Body.String())
	}
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	for _, path := range []string{"/api/dashboard", "/api/habits", "/api/insights", "/api/preferences"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rr.Code)
		}
	}
}

func TestLoginGrantsAccess(t *testing.T) {
	r, cleanup := setupRouterTest(t)
	defer cleanup()

	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, jsonRequest(http.MethodPost, "/api/login", `{"username":"admin","password":"wrong"}`))
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", bad.Code)
	}

	login := httptest.NewRecorder()
	r.ServeHTTP(login, jsonRequest(http.MethodPost, "/api/login", `{"username":"admin","password":"secret"}`))
	if login.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d %s", login.Code, login.Body.String())
	}
	cookies := login.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected dashboard after login, got %d %s", rr.Code, rr.Body.String())
	}
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
