package http

import "github.com/labstack/echo/v4"

// Routes bundles the handlers and guards mounted under /api.
type Routes struct {
	Health        *Handler
	Loans         *LoanHandler
	Reviews       *ReviewHandler
	Savings       *SavingsHandler
	Payments      *PaymentHandler
	Notifications *NotificationHandler
	SMS           *SMSHandler

	// Idempotency guards mutating client routes; Admin guards /api/admin.
	Idempotency echo.MiddlewareFunc
	Admin       echo.MiddlewareFunc
}

func chain(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func Register(e *echo.Echo, r Routes) {
	api := e.Group("/api")
	idem := chain(r.Idempotency)

	api.GET("/health", r.Health.Health)

	api.POST("/loans", r.Loans.SubmitLoan, idem...)
	api.GET("/loans/:loan_id", r.Loans.GetLoan)
	api.GET("/loans/:loan_id/payments", r.Loans.ListPayments)
	api.GET("/users/:user_id/loans", r.Loans.ListUserLoans)
	api.GET("/users/:user_id/loans/eligibility", r.Loans.Eligibility)

	api.POST("/savings/plans", r.Savings.CreatePlan, idem...)
	api.GET("/savings/plans/:plan_id", r.Savings.GetPlan)
	api.POST("/savings/plans/:plan_id/deposits", r.Savings.Deposit, idem...)
	api.GET("/savings/plans/:plan_id/transactions", r.Savings.ListTransactions)
	api.GET("/users/:user_id/savings/plans", r.Savings.ListUserPlans)

	api.POST("/fedapay/create-transaction", r.Payments.CreateTransaction, idem...)
	api.POST("/fedapay/webhook", r.Payments.Webhook)
	api.POST("/fedapay/verify/:transaction_id", r.Payments.Verify)

	api.POST("/sms/send-otp", r.SMS.SendOTP)

	api.GET("/users/:user_id/notifications", r.Notifications.ListUserNotifications)
	api.POST("/notifications/:id/read", r.Notifications.MarkRead)

	admin := api.Group("/admin", chain(r.Admin)...)
	admin.POST("/loans/mark-overdue", r.Loans.MarkOverdue)
	admin.POST("/loans/:loan_id/approve", r.Reviews.ApproveLoan)
	admin.POST("/loans/:loan_id/reject", r.Reviews.RejectLoan)
	admin.POST("/savings/plans/:plan_id/recompute", r.Savings.RecomputeBalance)
}
