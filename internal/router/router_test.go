package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/theater-seating/internal/config"
	"github.com/iliyamo/theater-seating/internal/handler"
	"github.com/iliyamo/theater-seating/internal/layout"
	"github.com/iliyamo/theater-seating/internal/middleware"
	"github.com/iliyamo/theater-seating/internal/queue"
	"github.com/iliyamo/theater-seating/internal/seating"
	"github.com/iliyamo/theater-seating/internal/store"
	"github.com/iliyamo/theater-seating/internal/utils"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ChartEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ChartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) kinds() []queue.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []queue.EventKind
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

type testServer struct {
	e   *echo.Echo
	pub *recordingPublisher
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	return newLimitedServer(t, nil)
}

func newLimitedServer(t *testing.T, limiter echo.MiddlewareFunc) *testServer {
	t.Helper()
	staffHash, err := utils.HashPasscode("1234", bcrypt.MinCost)
	require.NoError(t, err)
	adminHash, err := utils.HashPasscode("9999", bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:         "test-secret",
		AccessTTLMin:      10,
		StaffPasscodeHash: staffHash,
		AdminPasscodeHash: adminHash,
	}

	ctrl, err := seating.New(context.Background(), layout.Default(),
		store.NewMemory(store.NewKeys("seating", "test"), zap.NewNop()))
	require.NoError(t, err)

	pub := &recordingPublisher{}
	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg), cfg.JWTSecret)
	RegisterChart(e, handler.NewChartHandler(ctrl, pub, "test", zap.NewNop()), cfg.JWTSecret, limiter, 1<<20)
	return &testServer{e: e, pub: pub}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(token, filename, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", filename)
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/imports", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, passcode string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/v1/auth/login", "", echo.Map{"name": "usher", "passcode": passcode})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Access.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestHealthAndLayout(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = s.do(http.MethodGet, "/v1/layout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 128, decode(t, rec)["capacity"])
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusUnauthorized,
		s.do(http.MethodPost, "/v1/auth/login", "", echo.Map{"passcode": "0000"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		s.do(http.MethodPost, "/v1/auth/login", "", echo.Map{"name": "x"}).Code)

	token := s.login(t, "1234")
	rec := s.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, "usher", me["name"])
	assert.Equal(t, utils.RoleStaff, me["role"])
}

func TestStaffRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPut, "/v1/mode", "", echo.Map{"mode": "labeling"}).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/chart", "", nil).Code)
}

func TestDragReleaseBypassesRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	limiter := middleware.NewTokenBucket(config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1,
		RefillInterval: time.Hour, TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl",
	}, rdb, zap.NewNop())
	s := newLimitedServer(t, limiter)
	token := s.login(t, "1234")

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/v1/mode", token, echo.Map{"mode": "labeling"}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/seats/front-0-L0/press", token, nil).Code)
	require.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/v1/seats/front-0-L1/enter", token, nil).Code)

	assert.Equal(t, true, decode(t, s.do(http.MethodGet, "/v1/chart", "", nil))["dragging"])
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/v1/drag/release", token, nil).Code)
	}
	assert.Equal(t, false, decode(t, s.do(http.MethodGet, "/v1/chart", "", nil))["dragging"])
}

func TestSubmitLabelTrimsText(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "1234")
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/v1/mode", token, echo.Map{"mode": "labeling"}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/seats/front-0-L0/click", token, nil).Code)

	rec := s.do(http.MethodPost, "/v1/labels", token, echo.Map{"text": "  A  "})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["applied"])
	assert.Equal(t, "#FF6B6B", body["color"])
}

func TestLabelingFlow(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "1234")

	rec := s.do(http.MethodPut, "/v1/mode", token, echo.Map{"mode": "labeling"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "labeling", decode(t, rec)["mode"])

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/seats/front-0-L0/press", token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/seats/front-0-L1/enter", token, nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/v1/drag/release", token, nil).Code)

	rec = s.do(http.MethodPut, "/v1/labels/pending", token, echo.Map{"text": "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#FF6B6B", decode(t, rec)["preview_color"])

	rec = s.do(http.MethodPost, "/v1/labels", token, echo.Map{"text": "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["applied"])
	assert.Equal(t, "#FF6B6B", body["color"])

	rec = s.do(http.MethodPost, "/v1/labels", token, echo.Map{"text": "B"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["applied"], "selection was cleared by the first submit")

	rec = s.do(http.MethodGet, "/v1/chart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode(t, rec)
	assert.EqualValues(t, 2, chart["labeled"])
	assert.EqualValues(t, 2, chart["remaining_unseated"])

	rec = s.do(http.MethodPut, "/v1/mode", token, echo.Map{"mode": "seating"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/v1/groups/sat", token, echo.Map{"seats": []string{"front-0-L0", "front-0-L1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, true, body["all_sat"])
	assert.EqualValues(t, 0, body["remaining"])

	rec = s.do(http.MethodGet, "/v1/groups", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = s.do(http.MethodPost, "/v1/mode/toggle", token, echo.Map{"mode": "clearing"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodDelete, "/v1/groups/A", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["cleared"])
}

func TestSeatErrors(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "1234")
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/v1/seats/nonsense/click", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/v1/seats/front-9-L0/click", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/v1/mode", token, echo.Map{"mode": "dancing"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		s.do(http.MethodPost, "/v1/groups/clear", token, echo.Map{"seats": []string{"back-0-X1"}}).Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	staff := s.login(t, "1234")
	admin := s.login(t, "9999")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/v1/labels", staff, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/v1/labels", admin, nil).Code)
	assert.Equal(t, []queue.EventKind{queue.KindChartReset}, s.pub.kinds())
}

func TestImport(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "9999")

	rec := s.upload(admin, "orders.csv", "Name,Tickets,Purchase Date\nJones,14,2025-09-21\nSmith,4,2025-09-20\n")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 18, body["seats"])
	assert.NotEmpty(t, body["import_id"])
	groups := body["groups"].([]any)
	require.Len(t, groups, 2)
	assert.Equal(t, "Smith", groups[0].(map[string]any)["label"], "earliest purchase is seated first")
	assert.Equal(t, []queue.EventKind{queue.KindImportCompleted}, s.pub.kinds())

	rec = s.upload(admin, "orders.csv", "Big,"+strconv.Itoa(129)+",2025-09-20\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.upload(admin, "orders.csv", "Big,111,2025-09-20\n")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Big", decode(t, rec)["label"])

	rec = s.upload(admin, "orders.csv", "Smith,zero,2025-09-20\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	staff := s.login(t, "1234")
	assert.Equal(t, http.StatusForbidden, s.upload(staff, "orders.csv", "A,1,2025-01-01\n").Code)
	assert.Len(t, s.pub.kinds(), 1)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
}
