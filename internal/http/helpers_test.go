package handlers_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"pujcovna/internal/auth"
	"pujcovna/internal/config"
	"pujcovna/internal/http/handlers"
	applog "pujcovna/internal/log"
	"pujcovna/internal/repos"
	"pujcovna/internal/services"
)

const demoPassword = "Passw0rd!"

type testApp struct {
	app  *fiber.App
	deps *handlers.Deps
}

func newTestApp(t *testing.T, in handlers.Integrations) *testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", Currency: "CZK", InvoicingDueDays: 14, ShippingDefaultWeightG: 1500}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	require.NoError(t, repos.SeedDemo(db))
	t.Cleanup(func() { _ = db.Close() })

	authSvc := services.NewAuthService(repos.NewUserRepo(db), auth.NewIssuer("test-secret", time.Hour))
	deps := handlers.NewDeps(db, cfg, authSvc, in)
	deps.Reservations.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return &testApp{app: handlers.NewApp(deps, nil), deps: deps}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	resp := a.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": email, "password": demoPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type logLine struct {
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	UserID string         `json:"user_id"`
	Status int            `json:"status"`
	Fields map[string]any `json:"fields"`
}

// captureLogs redirects the application log into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := applog.Writer()
	applog.SetOutput(buf)
	t.Cleanup(func() { applog.SetOutput(prev) })
	return buf
}

func findLog(buf *bytes.Buffer, action string) (logLine, bool) {
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var l logLine
		if json.Unmarshal(sc.Bytes(), &l) != nil {
			continue
		}
		if l.Action == action {
			return l, true
		}
	}
	return logLine{}, false
}
