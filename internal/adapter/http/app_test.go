package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"abcampus-finance/internal/adapter/gateway/fedapay"
	"abcampus-finance/internal/adapter/middleware"
	"abcampus-finance/internal/adapter/repository/gormrepo"
	"abcampus-finance/internal/config"
	"abcampus-finance/internal/testutil/sqlitedb"
	"abcampus-finance/internal/usecase/checkout"
	loanuc "abcampus-finance/internal/usecase/loan"
	notificationuc "abcampus-finance/internal/usecase/notification"
	"abcampus-finance/internal/usecase/otp"
	"abcampus-finance/internal/usecase/reconcile"
	"abcampus-finance/internal/usecase/review"
	savingsuc "abcampus-finance/internal/usecase/savings"
)

const (
	userA         = "6f1c1e1e-8b4e-4c1a-9c55-0d1c3f8f2a11"
	userB         = "0b9d8f5a-3c1e-4b7d-8a22-9e6f4c3d2b10"
	adminSecret   = "admin-secret"
	webhookSecret = "wh_secret"
)

// ---- fakes ----

type fakeGateway struct {
	mu     sync.Mutex
	orders []checkout.Order
	err    error
}

func (g *fakeGateway) StartCheckout(_ context.Context, o checkout.Order) (*checkout.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.orders = append(g.orders, o)
	return &checkout.Session{TransactionID: "104578", Token: "tok_1", URL: "https://process.fedapay.com/tok_1"}, nil
}

type fakeFetcher struct {
	txs map[string]*fedapay.Transaction
}

func (f *fakeFetcher) GetTransaction(_ context.Context, id string) (*fedapay.Transaction, error) {
	if t, ok := f.txs[id]; ok {
		return t, nil
	}
	return nil, errors.Join(fedapay.ErrUpstream, errors.New("404 not found"))
}

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) Send(_ context.Context, to, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, to)
	return "msg-1", nil
}

// ---- app ----

func testPolicy() config.LoanPolicy {
	return config.LoanPolicy{
		InterestRate:    decimal.RequireFromString("0.10"),
		MinAmount:       decimal.NewFromInt(1000),
		MaxAmount:       decimal.NewFromInt(500000),
		MaxDurationDays: 365,
	}
}

type testApp struct {
	e       *echo.Echo
	db      *gorm.DB
	gw      *fakeGateway
	fetcher *fakeFetcher
	sms     *fakeSender
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := sqlitedb.Open(t)
	guow := gormrepo.NewGormUoW(db)
	loans := gormrepo.NewLoanRepository(db)
	plans := gormrepo.NewSavingsRepository(db)

	notifications := notificationuc.NewUsecase(gormrepo.NewNotificationRepository(db), nil)
	policy := testPolicy()

	app := &testApp{
		db:      db,
		gw:      &fakeGateway{},
		fetcher: &fakeFetcher{txs: map[string]*fedapay.Transaction{}},
		sms:     &fakeSender{},
	}

	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Routes{
		Health:        NewHandler(),
		Loans:         NewLoanHandler(loanuc.NewUsecase(loans, gormrepo.NewPaymentRepository(db), guow, notifications, policy, nil), nil),
		Reviews:       NewReviewHandler(review.NewUsecase(guow, notifications, nil), nil),
		Savings:       NewSavingsHandler(savingsuc.NewUsecase(plans, guow, notifications, nil), nil),
		Payments:      NewPaymentHandler(checkout.NewUsecase(loans, plans, app.gw, "pk_sandbox_test", nil), reconcile.NewUsecase(guow, notifications, nil), app.fetcher, webhookSecret, nil),
		Notifications: NewNotificationHandler(notifications, nil),
		SMS:           NewSMSHandler(otp.NewUsecase(app.sms, nil, nil), nil),
		Admin:         middleware.AdminAuth(adminSecret),
	})
	app.e = e
	return app
}

func adminToken(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(adminSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func (a *testApp) do(t *testing.T, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *stdhttp.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case []byte:
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
	default:
		req = httptest.NewRequest(method, path, mustJSON(b))
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) admin(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, stdhttp.MethodPost, path, body, map[string]string{echo.HeaderAuthorization: "Bearer " + adminToken(t)})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, want, rec.Body.String())
	}
}

// submitLoan files a 50000 loan (total due 55000) and returns its id.
func (a *testApp) submitLoan(t *testing.T, user string) string {
	t.Helper()
	rec := a.do(t, stdhttp.MethodPost, "/api/loans", map[string]any{
		"user_id":       user,
		"amount":        50000,
		"duration_days": 30,
		"purpose":       "school fees",
	}, nil)
	expectStatus(t, rec, stdhttp.StatusCreated)
	return decode[loanuc.LoanDTO](t, rec).LoanID
}

func (a *testApp) approvedLoan(t *testing.T, user string) string {
	t.Helper()
	id := a.submitLoan(t, user)
	expectStatus(t, a.admin(t, "/api/admin/loans/"+id+"/approve", nil), stdhttp.StatusOK)
	return id
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
