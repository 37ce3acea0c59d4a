package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "gem-auction/internal/authService"
	bidding "gem-auction/internal/biddingService"
	"gem-auction/internal/repository"
	"gem-auction/internal/server"
)

const (
	adminEmail    = "admin@gems.lk"
	adminPassword = "admin-secret"
)

// testClock is a settable server clock shared by the service under test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestApp is a fully wired application on top of the in-memory repository
type TestApp struct {
	Router     *gin.Engine
	Clock      *testClock
	AdminToken string
}

// SetupTestApp wires the real services and router and logs in a bootstrap admin.
func SetupTestApp(t *testing.T) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	clock := &testClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	biddingSvc := bidding.NewBiddingService(repo, repo, bidding.WithClock(clock.Now))
	authSvc := auth.NewAuthService(repo, "integration-secret", time.Hour, bcrypt.MinCost)

	_, err := authSvc.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	app := &TestApp{Router: server.SetupRouter(biddingSvc, authSvc), Clock: clock}
	app.AdminToken = app.Login(t, adminEmail, adminPassword)
	return app
}

// RegisterAndLogin creates a bidder account and returns its user id and token
func (a *TestApp) RegisterAndLogin(t *testing.T, email string) (string, string) {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": "hunter22",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	userID := Data(t, resp)["user_id"].(string)
	return userID, a.Login(t, email, "hunter22")
}

// Login returns an access token for the given credentials
func (a *TestApp) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return Data(t, resp)["access_token"].(string)
}

// CreateAuction creates an auction whose window is [now+startIn, now+startIn+length]
func (a *TestApp) CreateAuction(t *testing.T, token, name string, price float64, startIn, length time.Duration) string {
	t.Helper()
	start := a.Clock.Now().Add(startIn)
	resp, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/auctions", map[string]any{
		"name":           name,
		"starting_price": price,
		"bid_start_time": start.Format(time.RFC3339),
		"bid_end_time":   start.Add(length).Format(time.RFC3339),
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return Data(t, resp)["item_id"].(string)
}

// PlaceBid posts a bid and returns the recorder
func (a *TestApp) PlaceBid(t *testing.T, token, auctionID string, amount float64) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/bids", map[string]any{
		"auction_id": auctionID,
		"amount":     amount,
	}, token)
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any, token string) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return resp, w
}

// Data returns the object payload of a success envelope
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no object payload: %v", resp)
	return data
}

// DataList returns the list payload of a success envelope
func DataList(t *testing.T, resp map[string]any) []any {
	t.Helper()
	data, ok := resp["data"].([]any)
	require.True(t, ok, "response has no list payload: %v", resp)
	return data
}
