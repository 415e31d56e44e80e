package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/leavedesk/leave-backend-go/internal/config"
	appHTTP "github.com/leavedesk/leave-backend-go/internal/handler/http"
	"github.com/leavedesk/leave-backend-go/internal/pkg/database"
	"github.com/leavedesk/leave-backend-go/internal/pkg/email"
	"github.com/leavedesk/leave-backend-go/internal/pkg/jwt"
	"github.com/leavedesk/leave-backend-go/internal/pkg/storage"
	"github.com/leavedesk/leave-backend-go/internal/repository/postgresql"
	"github.com/leavedesk/leave-backend-go/internal/service/balance"
	leaveService "github.com/leavedesk/leave-backend-go/internal/service/leave"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	publicHolidayRepo := postgresql.NewPublicHolidayRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	documentStore, err := storage.NewLocalStore(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal("Failed to initialize document storage:", err)
	}

	notifier, err := email.NewNotifier(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email notifier:", err)
	}

	balanceService := balance.New()
	workflowService := leaveService.NewWorkflowService(
		leaveRequestRepo,
		publicHolidayRepo,
		userRepo,
		balanceService,
		documentStore,
		notifier,
	)

	leaveHandler := appHTTP.NewLeaveHandler(workflowService, balanceService)
	router := appHTTP.NewRouter(JWTService, leaveHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
