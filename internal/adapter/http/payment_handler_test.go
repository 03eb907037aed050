package http

import (
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"abcampus-finance/internal/adapter/gateway/fedapay"
	"abcampus-finance/internal/domain/payment"
	"abcampus-finance/internal/usecase/checkout"
	loanuc "abcampus-finance/internal/usecase/loan"
	"abcampus-finance/internal/usecase/reconcile"
	savingsuc "abcampus-finance/internal/usecase/savings"
)

func loanEvent(txID int, status, loanID, user string, amount int) []byte {
	return []byte(fmt.Sprintf(`{"name":"transaction.%s","entity":{"id":%d,"status":%q,"amount":%d,`+
		`"custom_metadata":{"loan_id":%q,"user_id":%q,"type":"loan_repayment"},"approved_at":"2026-03-01T10:00:00Z"}}`,
		status, txID, status, amount, loanID, user))
}

func (a *testApp) webhook(t *testing.T, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	hdr := map[string]string{}
	if sig != "" {
		hdr[fedapay.SignatureHeader] = sig
	}
	return a.do(t, stdhttp.MethodPost, "/api/fedapay/webhook", body, hdr)
}

func signed(body []byte) string { return fedapay.Sign(webhookSecret, body, time.Now()) }

func TestWebhook_RepaysLoanOnce(t *testing.T) {
	app := newTestApp(t)
	id := app.approvedLoan(t, userA)

	body := loanEvent(1001, "approved", id, userA, 55000)
	rec := app.webhook(t, body, signed(body))
	expectStatus(t, rec, stdhttp.StatusOK)
	res := decode[reconcile.Result](t, rec)
	if !res.Applied || res.Duplicate || res.LoanStatus != "completed" || res.ExternalID != "1001" {
		t.Fatalf("first delivery = %+v", res)
	}

	// redelivery is acknowledged without a second payment
	rec = app.webhook(t, body, signed(body))
	expectStatus(t, rec, stdhttp.StatusOK)
	if res := decode[reconcile.Result](t, rec); !res.Duplicate || res.Applied {
		t.Fatalf("redelivery = %+v", res)
	}

	rec = app.do(t, stdhttp.MethodGet, "/api/loans/"+id+"/payments", nil, nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	list := decode[struct {
		Payments []loanuc.PaymentDTO `json:"payments"`
	}](t, rec)
	if len(list.Payments) != 1 || list.Payments[0].TransactionID != "1001" || list.Payments[0].Status != string(payment.StatusCompleted) {
		t.Fatalf("payments = %+v", list.Payments)
	}

	rec = app.do(t, stdhttp.MethodGet, "/api/loans/"+id, nil, nil)
	if got := decode[loanuc.LoanDTO](t, rec); got.Status != "completed" {
		t.Fatalf("loan status = %s, want completed", got.Status)
	}
	rec = app.do(t, stdhttp.MethodGet, "/api/users/"+userA+"/loans/eligibility", nil, nil)
	if got := decode[loanuc.EligibilityDTO](t, rec); !got.CanRequest {
		t.Fatalf("repaid user should be eligible: %+v", got)
	}
}

func TestWebhook_SignatureRejected(t *testing.T) {
	app := newTestApp(t)
	id := app.approvedLoan(t, userA)
	body := loanEvent(1002, "approved", id, userA, 55000)

	expectStatus(t, app.webhook(t, body, ""), stdhttp.StatusUnauthorized)
	expectStatus(t, app.webhook(t, body, fedapay.Sign("wrong", body, time.Now())), stdhttp.StatusUnauthorized)
	expectStatus(t, app.webhook(t, body, fedapay.Sign(webhookSecret, body, time.Now().Add(-time.Hour))), stdhttp.StatusUnauthorized)

	var n int64
	if err := app.db.Model(&payment.Payment{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("payments = %d after rejected webhooks, want 0", n)
	}
}

func TestWebhook_PendingIgnoredAndMalformed(t *testing.T) {
	app := newTestApp(t)
	id := app.approvedLoan(t, userA)

	body := loanEvent(1003, "pending", id, userA, 55000)
	rec := app.webhook(t, body, signed(body))
	expectStatus(t, rec, stdhttp.StatusOK)
	if res := decode[reconcile.Result](t, rec); !res.Ignored || res.Applied {
		t.Fatalf("pending = %+v", res)
	}

	bad := []byte(`{"name":"transaction.approved","entity":{}}`)
	expectStatus(t, app.webhook(t, bad, signed(bad)), stdhttp.StatusUnprocessableEntity)
}

func TestWebhook_ForeignUserRefused(t *testing.T) {
	app := newTestApp(t)
	id := app.approvedLoan(t, userA)

	body := loanEvent(1004, "approved", id, userB, 55000)
	expectStatus(t, app.webhook(t, body, signed(body)), stdhttp.StatusForbidden)
}

func TestVerify_SavingsDeposit(t *testing.T) {
	app := newTestApp(t)
	plan := app.createPlan(t, userA)

	app.fetcher.txs["777"] = &fedapay.Transaction{
		ID:             "777",
		Status:         "approved",
		Amount:         decimal.NewFromInt(5000),
		CustomMetadata: fedapay.Metadata{PlanID: plan, UserID: userA, Type: reconcile.PurposeSavingsDeposit},
	}

	rec := app.do(t, stdhttp.MethodPost, "/api/fedapay/verify/777", nil, nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if res := decode[reconcile.Result](t, rec); !res.Applied || res.PlanID != plan {
		t.Fatalf("verify = %+v", res)
	}

	// polling again changes nothing
	rec = app.do(t, stdhttp.MethodPost, "/api/fedapay/verify/777", nil, nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if res := decode[reconcile.Result](t, rec); !res.Duplicate {
		t.Fatalf("second verify = %+v", res)
	}

	rec = app.do(t, stdhttp.MethodGet, "/api/savings/plans/"+plan, nil, nil)
	got := decode[savingsuc.PlanDTO](t, rec)
	if !got.CurrentBalance.Equal(decimal.NewFromInt(5000)) || got.CompletedDeposits != 1 {
		t.Fatalf("plan after verify = %+v", got)
	}

	expectStatus(t, app.do(t, stdhttp.MethodPost, "/api/fedapay/verify/404", nil, nil), stdhttp.StatusBadGateway)
}

func TestCreateTransaction(t *testing.T) {
	app := newTestApp(t)
	id := app.approvedLoan(t, userA)

	rec := app.do(t, stdhttp.MethodPost, "/api/fedapay/create-transaction", map[string]any{
		"amount":   55000,
		"loanId":   id,
		"userId":   userA,
		"customer": map[string]any{"firstname": "Ada", "email": "ada@example.com"},
	}, nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	got := decode[checkout.CheckoutDTO](t, rec)
	if !got.Success || got.TransactionID != "104578" || got.PublicKey != "pk_sandbox_test" || got.URL == "" {
		t.Fatalf("checkout = %+v", got)
	}
	if len(app.gw.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(app.gw.orders))
	}
	md := app.gw.orders[0].Metadata
	if md["loan_id"] != id || md["user_id"] != userA || md["type"] != reconcile.PurposeLoanRepayment {
		t.Fatalf("metadata = %+v", md)
	}
}

func TestCreateTransaction_Rejections(t *testing.T) {
	app := newTestApp(t)
	pending := app.submitLoan(t, userA)
	approved := app.approvedLoan(t, userB)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"no reference", map[string]any{"amount": 1000, "userId": userA}, stdhttp.StatusUnprocessableEntity},
		{"fractional amount", map[string]any{"amount": 10.5, "loanId": approved, "userId": userB}, stdhttp.StatusUnprocessableEntity},
		{"bad email", map[string]any{"amount": 1000, "loanId": approved, "userId": userB, "customer": map[string]any{"email": "nope"}}, stdhttp.StatusUnprocessableEntity},
		{"pending loan", map[string]any{"amount": 1000, "loanId": pending, "userId": userA}, stdhttp.StatusConflict},
		{"other user", map[string]any{"amount": 1000, "loanId": approved, "userId": userA}, stdhttp.StatusForbidden},
		{"unknown loan", map[string]any{"amount": 1000, "loanId": "missing", "userId": userA}, stdhttp.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, app.do(t, stdhttp.MethodPost, "/api/fedapay/create-transaction", tt.body, nil), tt.want)
		})
	}
	if len(app.gw.orders) != 0 {
		t.Fatalf("gateway called %d times for rejected requests", len(app.gw.orders))
	}
}

func TestCreateTransaction_GatewayDown(t *testing.T) {
	app := newTestApp(t)
	id := app.approvedLoan(t, userA)
	app.gw.err = fmt.Errorf("%w: 503", fedapay.ErrUpstream)

	rec := app.do(t, stdhttp.MethodPost, "/api/fedapay/create-transaction", map[string]any{
		"amount": 55000, "loanId": id, "userId": userA,
	}, nil)
	expectStatus(t, rec, stdhttp.StatusBadGateway)
}
