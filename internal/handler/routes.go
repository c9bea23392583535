package handler

import (
	"github.com/dafibh/finora/finora-backend/internal/metrics"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every HTTP handler registered by RegisterRoutes
type Handlers struct {
	Auth         *AuthHandler
	Transaction  *TransactionHandler
	Card         *CardHandler
	Budget       *BudgetHandler
	Goal         *GoalHandler
	Debt         *DebtHandler
	Closure      *ClosureHandler
	Balance      *BalanceHandler
	Report       *ReportHandler
	Notification *NotificationHandler
	Category     *CategoryHandler
	Automation   *AutomationHandler
	WebSocket    *WebSocketHandler
	Docs         *DocsHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, suggestLimiter *middleware.RateLimiter, h Handlers) {
	// Operational endpoints
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if h.Docs != nil {
		e.GET("/openapi.json", h.Docs.ServeOpenAPI3)
	}
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes work before the workspace exists
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)

	// Everything else requires a workspace
	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate(), middleware.RequireWorkspace())

	transactions := protected.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.POST("/import", h.Transaction.ImportTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PATCH("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)
	transactions.POST("/:id/attachment", h.Transaction.UploadAttachment)
	transactions.GET("/:id/attachment", h.Transaction.GetAttachmentURL)

	cards := protected.Group("/cards")
	cards.POST("", h.Card.CreateCard)
	cards.GET("", h.Card.GetCards)
	cards.GET("/summaries", h.Card.GetCardSummaries)
	cards.PUT("/:id", h.Card.UpdateCard)
	cards.DELETE("/:id", h.Card.DeleteCard)
	cards.GET("/:id/invoices", h.Card.GetInvoices)
	cards.POST("/:id/invoices/pay", h.Card.PayInvoice)

	budgets := protected.Group("/budgets")
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.GetBudgets)
	budgets.GET("/evaluation", h.Budget.EvaluateBudgets)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)

	goals := protected.Group("/goals")
	goals.POST("", h.Goal.CreateGoal)
	goals.GET("", h.Goal.GetGoals)
	goals.PUT("/:id", h.Goal.UpdateGoal)
	goals.DELETE("/:id", h.Goal.DeleteGoal)
	goals.POST("/:id/contributions", h.Goal.Contribute)

	debts := protected.Group("/debts")
	debts.POST("", h.Debt.CreateDebt)
	debts.GET("", h.Debt.GetDebts)
	debts.GET("/simulation", h.Debt.SimulatePayoff)
	debts.PUT("/:id", h.Debt.UpdateDebt)
	debts.DELETE("/:id", h.Debt.DeleteDebt)
	debts.POST("/:id/payments", h.Debt.PayDebt)

	closures := protected.Group("/closures")
	closures.GET("", h.Closure.GetClosures)
	closures.GET("/:year/:month", h.Closure.GetClosure)
	closures.PUT("/:year/:month", h.Closure.ToggleClosure)

	protected.GET("/balance/:year/:month", h.Balance.GetMonthBalance)
	protected.GET("/dashboard/:year/:month", h.Balance.GetDashboard)

	reports := protected.Group("/reports")
	reports.GET("/daily", h.Report.GetDailyFlow)
	reports.GET("/semiannual", h.Report.GetSemiannualFlow)

	protected.GET("/notifications", h.Notification.GetNotifications)

	categories := protected.Group("/categories")
	categories.GET("", h.Category.GetCatalog)
	categories.POST("/suggest", h.Category.SuggestCategory, middleware.RateLimitMiddleware(suggestLimiter))

	protected.POST("/automation/run", h.Automation.RunAutomation)
}
