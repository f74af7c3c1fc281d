package api

import (
	"github.com/gorilla/mux"

	"github.com/lifelog/lifelog-server/internal/api/recovery"
	"github.com/lifelog/lifelog-server/internal/auth"
	"github.com/lifelog/lifelog-server/internal/services"
	"github.com/lifelog/lifelog-server/internal/store"
)

// NewRouter builds the HTTP router over a single store.
func NewRouter(st store.Store, authorizer auth.Authorizer) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	router.Use(auth.Middleware(authorizer))

	// Domain services
	userSvc := services.NewUserService(st)
	healthSvc := services.NewHealthService(st)
	taskSvc := services.NewTaskService(st)
	journalSvc := services.NewJournalService(st)
	expenseSvc := services.NewExpenseService(st)
	dailySvc := services.NewDailyService(st)

	// Handlers
	healthHandler := NewHealthHandler()
	userHandler := NewUserHandler(userSvc)
	healthEntryHandler := NewHealthEntryHandler(healthSvc)
	taskHandler := NewTaskHandler(taskSvc)
	journalHandler := NewJournalHandler(journalSvc)
	expenseHandler := NewExpenseHandler(expenseSvc)
	summaryHandler := NewSummaryHandler(dailySvc)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// User endpoints
	router.HandleFunc("/api/users", userHandler.CreateUser).Methods("POST")
	router.HandleFunc("/api/users/{userId}", userHandler.GetUser).Methods("GET")
	router.HandleFunc("/api/users/{userId}", userHandler.DeleteUser).Methods("DELETE")

	// Health entry endpoints. Stats registers before the {entryId} wildcard.
	router.HandleFunc("/api/users/{userId}/health", healthEntryHandler.CreateEntry).Methods("POST")
	router.HandleFunc("/api/users/{userId}/health", healthEntryHandler.ListEntries).Methods("GET")
	router.HandleFunc("/api/users/{userId}/health/stats", healthEntryHandler.GetStats).Methods("GET")
	router.HandleFunc("/api/users/{userId}/health/{entryId}", healthEntryHandler.GetEntry).Methods("GET")
	router.HandleFunc("/api/users/{userId}/health/{entryId}", healthEntryHandler.UpdateEntry).Methods("PATCH")
	router.HandleFunc("/api/users/{userId}/health/{entryId}", healthEntryHandler.DeleteEntry).Methods("DELETE")

	// Task endpoints
	router.HandleFunc("/api/users/{userId}/tasks", taskHandler.CreateTask).Methods("POST")
	router.HandleFunc("/api/users/{userId}/tasks", taskHandler.ListTasks).Methods("GET")
	router.HandleFunc("/api/users/{userId}/tasks/{taskId}", taskHandler.GetTask).Methods("GET")
	router.HandleFunc("/api/users/{userId}/tasks/{taskId}", taskHandler.UpdateTask).Methods("PATCH")
	router.HandleFunc("/api/users/{userId}/tasks/{taskId}", taskHandler.DeleteTask).Methods("DELETE")

	// Journal endpoints
	router.HandleFunc("/api/users/{userId}/journal", journalHandler.CreateEntry).Methods("POST")
	router.HandleFunc("/api/users/{userId}/journal", journalHandler.ListEntries).Methods("GET")
	router.HandleFunc("/api/users/{userId}/journal/{entryId}", journalHandler.GetEntry).Methods("GET")
	router.HandleFunc("/api/users/{userId}/journal/{entryId}", journalHandler.UpdateEntry).Methods("PATCH")
	router.HandleFunc("/api/users/{userId}/journal/{entryId}", journalHandler.DeleteEntry).Methods("DELETE")

	// Expense endpoints
	router.HandleFunc("/api/users/{userId}/expenses", expenseHandler.CreateExpense).Methods("POST")
	router.HandleFunc("/api/users/{userId}/expenses", expenseHandler.ListExpenses).Methods("GET")
	router.HandleFunc("/api/users/{userId}/expenses/{expenseId}", expenseHandler.GetExpense).Methods("GET")
	router.HandleFunc("/api/users/{userId}/expenses/{expenseId}", expenseHandler.UpdateExpense).Methods("PATCH")
	router.HandleFunc("/api/users/{userId}/expenses/{expenseId}", expenseHandler.DeleteExpense).Methods("DELETE")

	// Daily summary endpoint
	router.HandleFunc("/api/users/{userId}/summary/daily", summaryHandler.GetDailySummary).Methods("GET")

	return router
}
