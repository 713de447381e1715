package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"CanteenFeedback/internal/auth"
	"CanteenFeedback/internal/feed"
	"CanteenFeedback/internal/feedback"
	"CanteenFeedback/internal/models"
	"CanteenFeedback/internal/sentiment"
	"CanteenFeedback/internal/storage"
)

var testToday = time.Date(2024, time.May, 10, 12, 0, 0, 0, time.Local)

const adminPassword = "pa55word"

type testApp struct {
	router *gin.Engine
	store  *storage.MemoryStore
	hub    *feed.Hub
}

type failingAppender struct{}

func (failingAppender) AppendToTable(context.Context, string, []string, []string) error {
	return errors.New("sheets: 403 permission denied for service-account@example")
}

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestApp wires the handler the way main does. Reviews containing "loved"
// classify as positive.
func newTestApp(t *testing.T, withAdmin bool, appender feedback.TableAppender) *testApp {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := storage.NewMemoryStore()
	if appender == nil {
		appender = storage.NewAppender(store, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := feed.NewHub(log)
	go hub.Run(ctx)

	predictor := sentiment.PredictorFunc(func(_ context.Context, text string) (int, error) {
		if strings.Contains(strings.ToLower(text), "loved") {
			return 1, nil
		}
		return 0, nil
	})
	svc := feedback.NewService(sentiment.NewClassifier(predictor), appender, log,
		feedback.WithClock(func() time.Time { return testToday }),
		feedback.WithNotifier(hub),
	)

	cfg := Config{Service: svc, Reader: store, Hub: hub, Timeout: time.Second, Log: log}
	if withAdmin {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.Issuer = auth.NewTokenIssuer("test-secret", time.Hour)
		cfg.Admin = auth.Admin{Username: "admin", PasswordHash: string(hash)}
	}

	router := gin.New()
	require.NoError(t, New(cfg).Register(router, func(c *gin.Context) { c.Next() }))
	return &testApp{router: router, store: store, hub: hub}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func janeDoe() FeedbackRequest {
	return FeedbackRequest{
		Name:      "Jane Doe",
		Phone:     "9876543210",
		Food:      "Pasta",
		VisitDate: "2024-05-10",
		Review:    "Excellent food, loved it!",
	}
}

func TestShowForm(t *testing.T) {
	app := newTestApp(t, false, nil)
	w := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "VIT Canteen Feedback")
	assert.Contains(t, w.Body.String(), `max="2024-05-10"`)
	assert.Contains(t, w.Body.String(), `min="2020-01-01"`)
}

func TestSubmitFeedbackJSON(t *testing.T) {
	app := newTestApp(t, false, nil)

	w := app.do(jsonRequest(http.MethodPost, "/api/feedback", janeDoe()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var conf feedback.Confirmation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conf))
	assert.Equal(t, "Jane", conf.FirstName)
	assert.Equal(t, models.Positive, conf.Sentiment)
	assert.Equal(t, feedback.PositiveTable, conf.Table)

	rows, err := app.store.ReadTable(context.Background(), feedback.PositiveTable)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		models.Header,
		{"Jane Doe", "9876543210", "Pasta", "2024-05-10", "Excellent food, loved it!"},
	}, rows)
}

func TestSubmitFeedbackJSONValidation(t *testing.T) {
	app := newTestApp(t, false, nil)

	w := app.do(jsonRequest(http.MethodPost, "/api/feedback", FeedbackRequest{VisitDate: "2024-05-11"}))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Violations, 5)
	assert.Equal(t, "Visit date can't be in the future.", resp.Violations[3].Message)

	_, err := app.store.ReadTable(context.Background(), feedback.PositiveTable)
	assert.ErrorIs(t, err, storage.ErrTableNotFound)
	_, err = app.store.ReadTable(context.Background(), feedback.NegativeTable)
	assert.ErrorIs(t, err, storage.ErrTableNotFound)
}

func TestSubmitFeedbackBadJSON(t *testing.T) {
	app := newTestApp(t, false, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, app.do(req).Code)
}

func TestSubmitFeedbackHidesUpstreamErrors(t *testing.T) {
	app := newTestApp(t, false, failingAppender{})

	w := app.do(jsonRequest(http.MethodPost, "/api/feedback", janeDoe()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "service-account")

	values := url.Values{"name": {"Jane Doe"}, "phone": {"9876543210"}, "food": {"Pasta"}, "visit_date": {"2024-05-10"}, "review": {"meh"}}
	w = app.do(formRequest("/feedback", values))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "service-account")
}

func TestSubmitForm(t *testing.T) {
	app := newTestApp(t, false, nil)

	values := url.Values{
		"name":       {"Ann Lee"},
		"phone":      {"1234567890"},
		"food":       {"Soup"},
		"visit_date": {"2024-05-01"},
		"review":     {"Cold and bland"},
	}
	w := app.do(formRequest("/feedback", values))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thank you, Ann!")
	assert.Contains(t, w.Body.String(), "Your negative feedback has been submitted successfully.")

	rows, err := app.store.ReadTable(context.Background(), feedback.NegativeTable)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSubmitFormShowsAllErrors(t *testing.T) {
	app := newTestApp(t, false, nil)

	values := url.Values{"name": {"Ann"}, "phone": {"123-456-7890"}, "food": {""}, "visit_date": {"2024-05-01"}, "review": {"ok"}}
	w := app.do(formRequest("/feedback", values))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Phone must be exactly 10 digits.")
	assert.Contains(t, body, "Please tell us what you ordered.")
	assert.Contains(t, body, `value="Ann"`)
}

func login(t *testing.T, app *testApp) string {
	t.Helper()
	w := app.do(jsonRequest(http.MethodPost, "/admin/login", LoginRequest{Username: "admin", Password: adminPassword}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginSuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAdminReviews(t *testing.T) {
	app := newTestApp(t, true, nil)
	app.store.PutRaw(feedback.PositiveTable, [][]string{models.Header, {"Jane Doe", "9876543210", "Pasta", "2024-05-10", "Loved it"}})
	app.store.PutRaw(feedback.NegativeTable, [][]string{models.Header})

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/admin/reviews", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(jsonRequest(http.MethodPost, "/admin/login", LoginRequest{Username: "admin", Password: "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, app)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/reviews", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = app.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ReviewsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tables, 2)
	assert.Equal(t, feedback.PositiveTable, resp.Tables[0].Name)
	assert.Len(t, resp.Tables[0].Rows, 2)
	assert.Equal(t, [][]string{models.Header}, resp.Tables[1].Rows)
}

func TestAdminDashboardPage(t *testing.T) {
	app := newTestApp(t, true, nil)
	app.store.PutRaw(feedback.PositiveTable, [][]string{models.Header, {"Jane Doe", "9876543210", "Pasta", "2024-05-10", "Loved it"}})
	app.store.PutRaw(feedback.NegativeTable, [][]string{models.Header})

	w := app.do(formRequest("/admin/login", url.Values{"username": {"admin"}, "password": {adminPassword}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookies[0])
	w = app.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Positive Reviews")
	assert.Contains(t, w.Body.String(), "Negative Reviews")
	assert.Contains(t, w.Body.String(), "<td>Jane Doe</td>")
}

func TestAdminDashboardBeforeFirstNegativeReview(t *testing.T) {
	app := newTestApp(t, false, nil)
	require.Equal(t, http.StatusCreated, app.do(jsonRequest(http.MethodPost, "/api/feedback", janeDoe())).Code)

	w := app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<td>Jane Doe</td>")
	assert.Contains(t, w.Body.String(), "Negative Reviews")

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/admin/reviews", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp ReviewsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tables, 2)
	assert.Len(t, resp.Tables[0].Rows, 2)
	assert.Empty(t, resp.Tables[1].Rows)
}

func TestAdminRoutesIgnoreQueryToken(t *testing.T) {
	app := newTestApp(t, true, nil)
	token := login(t, app)

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/admin/reviews?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginBadRequest(t *testing.T) {
	app := newTestApp(t, true, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader("username=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := app.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Invalid request")

	req = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w = app.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestReviewFeed(t *testing.T) {
	app := newTestApp(t, true, nil)
	token := login(t, app)

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/reviews", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/reviews?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return app.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	w := app.do(jsonRequest(http.MethodPost, "/api/feedback", janeDoe()))
	require.Equal(t, http.StatusCreated, w.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev feed.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, feedback.PositiveTable, ev.Table)
	assert.Equal(t, "Jane Doe", ev.Row.Name)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, false, nil)
	assert.Equal(t, http.StatusOK, app.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
