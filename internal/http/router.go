package http

import (
	"net/http"

	"catering-backend/internal/handlers"
	"catering-backend/internal/middleware"
	"catering-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminHandlers are the handlers mounted on the staff router.
type AdminHandlers struct {
	Auth         *handlers.AuthHandler
	TOTP         *handlers.TOTPHandler
	Users        *handlers.UserHandler
	Logs         *handlers.LogHandler
	Customers    *handlers.CustomerHandler
	Menu         *handlers.MenuHandler
	Orders       *handlers.OrderHandler
	Bills        *handlers.BillHandler
	Expenses     *handlers.ExpenseHandler
	Workforce    *handlers.WorkforceHandler
	Stock        *handlers.StockHandler
	Analytics    *handlers.AnalyticsHandler
	Notification *handlers.NotificationHandler
	Reminders    *handlers.ReminderHandler
	Health       *handlers.HealthHandler
}

// CustomerHandlers are the handlers mounted on the customer portal router.
type CustomerHandlers struct {
	Portal   *handlers.CustomerPortalHandler
	Razorpay *handlers.RazorpayHandler
	Health   *handlers.HealthHandler
}

func mountHealth(r *mux.Router, h *handlers.HealthHandler) {
	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", h.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())
}

// NewRouter creates the staff router (port 8080)
func NewRouter(h AdminHandlers, authMiddleware *middleware.AuthMiddleware, authLimiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()

	role := func(fn http.HandlerFunc, roles ...string) http.HandlerFunc {
		return authMiddleware.RequireRole(roles...)(fn).ServeHTTP
	}
	admin := func(fn http.HandlerFunc) http.HandlerFunc {
		return role(fn, models.RoleAdmin)
	}
	manager := func(fn http.HandlerFunc) http.HandlerFunc {
		return role(fn, models.RoleAdmin, models.RoleManager)
	}

	// Public API routes - Authentication (rate limited per IP)
	authAPI := r.PathPrefix("/auth").Subrouter()
	authAPI.Use(authLimiter.Handler)
	authAPI.HandleFunc("/login", h.Auth.Login).Methods("POST")
	authAPI.HandleFunc("/2fa/verify", h.Auth.Verify2FA).Methods("POST")
	authAPI.HandleFunc("/refresh", h.Auth.Refresh).Methods("POST")
	authAPI.HandleFunc("/logout", h.Auth.Logout).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Current user
	api.HandleFunc("/me", h.Auth.Me).Methods("GET")
	api.HandleFunc("/me/password", h.Auth.ChangePassword).Methods("PUT")
	api.HandleFunc("/me/2fa/setup", h.TOTP.SetupTOTP).Methods("POST")
	api.HandleFunc("/me/2fa/enable", h.TOTP.EnableTOTP).Methods("POST")
	api.HandleFunc("/me/2fa/disable", h.TOTP.DisableTOTP).Methods("POST")

	// Users and audit logs (admin only)
	api.HandleFunc("/users", admin(h.Users.ListUsers)).Methods("GET")
	api.HandleFunc("/users", admin(h.Users.CreateUser)).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}", admin(h.Users.GetUser)).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}", admin(h.Users.UpdateUser)).Methods("PUT")
	api.HandleFunc("/users/{id:[0-9]+}", admin(h.Users.DeleteUser)).Methods("DELETE")
	api.HandleFunc("/login-logs", admin(h.Logs.ListLoginLogs)).Methods("GET")
	api.HandleFunc("/admin-action-logs", admin(h.Logs.ListActionLogs)).Methods("GET")

	// Customers
	api.HandleFunc("/customers", h.Customers.ListCustomers).Methods("GET")
	api.HandleFunc("/customers", h.Customers.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.GetCustomer).Methods("GET")
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.UpdateCustomer).Methods("PUT")
	api.HandleFunc("/customers/{id:[0-9]+}", manager(h.Customers.DeleteCustomer)).Methods("DELETE")
	api.HandleFunc("/customers/{id:[0-9]+}/summary", h.Customers.Summary).Methods("GET")

	// Menu
	api.HandleFunc("/menu", h.Menu.List).Methods("GET")
	api.HandleFunc("/menu", manager(h.Menu.Create)).Methods("POST")
	api.HandleFunc("/menu/{id:[0-9]+}", h.Menu.Get).Methods("GET")
	api.HandleFunc("/menu/{id:[0-9]+}", manager(h.Menu.Update)).Methods("PUT")
	api.HandleFunc("/menu/{id:[0-9]+}", manager(h.Menu.Delete)).Methods("DELETE")

	// Orders
	api.HandleFunc("/orders", h.Orders.ListOrders).Methods("GET")
	api.HandleFunc("/orders", h.Orders.CreateOrder).Methods("POST")
	api.HandleFunc("/orders/merge", manager(h.Orders.MergeOrders)).Methods("POST")
	api.HandleFunc("/orders/{id:[0-9]+}", h.Orders.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{id:[0-9]+}", h.Orders.UpdateOrder).Methods("PUT")
	api.HandleFunc("/orders/{id:[0-9]+}", manager(h.Orders.DeleteOrder)).Methods("DELETE")
	api.HandleFunc("/orders/{id:[0-9]+}/status", h.Orders.UpdateStatus).Methods("PATCH")
	api.HandleFunc("/orders/{id:[0-9]+}/split/date", manager(h.Orders.SplitByDate)).Methods("POST")
	api.HandleFunc("/orders/{id:[0-9]+}/split/sessions", manager(h.Orders.SplitBySession)).Methods("POST")
	api.HandleFunc("/orders/{id:[0-9]+}/bill", h.Orders.GetOrderBill).Methods("GET")
	api.HandleFunc("/orders/{id:[0-9]+}/sheet.pdf", h.Orders.OrderSheet).Methods("GET")

	// Bills and payment ledger
	api.HandleFunc("/bills", h.Bills.ListBills).Methods("GET")
	api.HandleFunc("/bills/{id:[0-9]+}", h.Bills.GetBill).Methods("GET")
	api.HandleFunc("/bills/{id:[0-9]+}/payments", h.Bills.RecordPayment).Methods("POST")
	api.HandleFunc("/bills/{id:[0-9]+}/payments/{index:[0-9]+}", manager(h.Bills.EditPayment)).Methods("PUT")
	api.HandleFunc("/bills/{id:[0-9]+}/payments/{index:[0-9]+}", manager(h.Bills.DeletePayment)).Methods("DELETE")
	api.HandleFunc("/bills/{id:[0-9]+}/pdf", h.Bills.DownloadPDF).Methods("GET")
	api.HandleFunc("/bills/{id:[0-9]+}/email", h.Bills.EmailBill).Methods("POST")
	api.HandleFunc("/bills/{id:[0-9]+}/archive", manager(h.Bills.ArchiveBill)).Methods("POST")

	// Expenses
	api.HandleFunc("/expenses", h.Expenses.ListExpenses).Methods("GET")
	api.HandleFunc("/expenses", h.Expenses.CreateExpense).Methods("POST")
	api.HandleFunc("/expenses/export", manager(h.Expenses.ExportCSV)).Methods("GET")
	api.HandleFunc("/expenses/totals", h.Expenses.Totals).Methods("GET")
	api.HandleFunc("/expenses/{id:[0-9]+}", h.Expenses.GetExpense).Methods("GET")
	api.HandleFunc("/expenses/{id:[0-9]+}", h.Expenses.UpdateExpense).Methods("PUT")
	api.HandleFunc("/expenses/{id:[0-9]+}", manager(h.Expenses.DeleteExpense)).Methods("DELETE")

	// Workforce (admin and manager)
	api.HandleFunc("/workforce", manager(h.Workforce.ListMembers)).Methods("GET")
	api.HandleFunc("/workforce", manager(h.Workforce.CreateMember)).Methods("POST")
	api.HandleFunc("/workforce/{id:[0-9]+}", manager(h.Workforce.GetMember)).Methods("GET")
	api.HandleFunc("/workforce/{id:[0-9]+}", manager(h.Workforce.UpdateMember)).Methods("PUT")
	api.HandleFunc("/workforce/{id:[0-9]+}", manager(h.Workforce.DeleteMember)).Methods("DELETE")
	api.HandleFunc("/workforce-payments", manager(h.Workforce.ListPayments)).Methods("GET")
	api.HandleFunc("/workforce-payments", manager(h.Workforce.CreatePayment)).Methods("POST")
	api.HandleFunc("/workforce-payments/{id:[0-9]+}", manager(h.Workforce.GetPayment)).Methods("GET")
	api.HandleFunc("/workforce-payments/{id:[0-9]+}", manager(h.Workforce.UpdatePayment)).Methods("PUT")
	api.HandleFunc("/workforce-payments/{id:[0-9]+}", manager(h.Workforce.DeletePayment)).Methods("DELETE")

	// Stock
	api.HandleFunc("/stock", h.Stock.ListItems).Methods("GET")
	api.HandleFunc("/stock", manager(h.Stock.CreateItem)).Methods("POST")
	api.HandleFunc("/stock/summary", h.Stock.Summary).Methods("GET")
	api.HandleFunc("/stock/transactions", h.Stock.ListTxns).Methods("GET")
	api.HandleFunc("/stock/in", h.Stock.StockIn).Methods("POST")
	api.HandleFunc("/stock/out", h.Stock.StockOut).Methods("POST")
	api.HandleFunc("/stock/adjust", manager(h.Stock.Adjust)).Methods("POST")
	api.HandleFunc("/stock/{id:[0-9]+}", h.Stock.GetItem).Methods("GET")
	api.HandleFunc("/stock/{id:[0-9]+}", manager(h.Stock.UpdateItem)).Methods("PUT")
	api.HandleFunc("/stock/{id:[0-9]+}", manager(h.Stock.DeleteItem)).Methods("DELETE")

	// Analytics (admin and manager)
	api.HandleFunc("/analytics/dashboard", manager(h.Analytics.Dashboard)).Methods("GET")
	api.HandleFunc("/analytics/monthly", manager(h.Analytics.Monthly)).Methods("GET")
	api.HandleFunc("/analytics/top-customers", manager(h.Analytics.TopCustomers)).Methods("GET")
	api.HandleFunc("/analytics/profitability", manager(h.Analytics.OrderProfitability)).Methods("GET")

	// Live notifications
	api.HandleFunc("/notifications", h.Notification.Recent).Methods("GET")
	api.HandleFunc("/notifications/stream", h.Notification.Stream).Methods("GET")
	api.HandleFunc("/notifications/ws", h.Notification.WebSocket).Methods("GET")

	api.HandleFunc("/reminders/payments", manager(h.Reminders.SendPaymentReminders)).Methods("POST")
	api.HandleFunc("/reminders/sessions", manager(h.Reminders.SendSessionReminders)).Methods("POST")

	api.HandleFunc("/system/health", admin(h.Health.DetailedHealth)).Methods("GET")

	mountHealth(r, h.Health)
	return r
}

// NewCustomerRouter creates a router for customer portal (port 8081)
func NewCustomerRouter(h CustomerHandlers, customerAuth *middleware.CustomerAuthMiddleware, authLimiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()

	// Public API - customer authentication
	authAPI := r.PathPrefix("/auth").Subrouter()
	authAPI.Use(authLimiter.Handler)
	authAPI.HandleFunc("/signup", h.Portal.Signup).Methods("POST")
	authAPI.HandleFunc("/login", h.Portal.Login).Methods("POST")
	authAPI.HandleFunc("/send-otp", h.Portal.SendOTP).Methods("POST")
	authAPI.HandleFunc("/verify-otp", h.Portal.VerifyOTP).Methods("POST")
	r.HandleFunc("/auth/logout", h.Portal.Logout).Methods("POST")

	// Razorpay server-to-server callbacks (signature checked, no session)
	r.HandleFunc("/webhooks/razorpay", h.Razorpay.Webhook).Methods("POST")

	// Protected API routes - Customer portal (requires customer JWT)
	customerAPI := r.PathPrefix("/api").Subrouter()
	customerAPI.Use(customerAuth.Authenticate)
	customerAPI.HandleFunc("/me", h.Portal.Me).Methods("GET")
	customerAPI.HandleFunc("/orders", h.Portal.MyOrders).Methods("GET")
	customerAPI.HandleFunc("/orders", h.Portal.SubmitOrder).Methods("POST")
	customerAPI.HandleFunc("/orders/{id:[0-9]+}", h.Portal.MyOrder).Methods("GET")
	customerAPI.HandleFunc("/bills", h.Portal.MyBills).Methods("GET")
	customerAPI.HandleFunc("/bills/{id:[0-9]+}", h.Portal.MyBill).Methods("GET")
	customerAPI.HandleFunc("/bills/{id:[0-9]+}/pdf", h.Portal.MyBillPDF).Methods("GET")
	customerAPI.HandleFunc("/payment/status", h.Razorpay.Status).Methods("GET")
	customerAPI.HandleFunc("/payment/create-order", h.Razorpay.CreateOrder).Methods("POST")
	customerAPI.HandleFunc("/payment/verify", h.Razorpay.VerifyPayment).Methods("POST")
	customerAPI.HandleFunc("/payment/transactions", h.Razorpay.Transactions).Methods("GET")

	mountHealth(r, h.Health)
	return r
}

// Chain wraps a router in the shared middleware stack.
func Chain(h http.Handler, cors func(http.Handler) http.Handler) http.Handler {
	return middleware.PanicRecovery(middleware.RequestLogger(middleware.MetricsMiddleware(cors(h))))
}
