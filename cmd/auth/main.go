package main

import (
	"fmt"
	"net/http"

	"github.com/leavedesk/leave-backend-go/internal/config"
	appHTTP "github.com/leavedesk/leave-backend-go/internal/handler/http"
	"github.com/leavedesk/leave-backend-go/internal/pkg/database"
	"github.com/leavedesk/leave-backend-go/internal/pkg/jwt"
	"github.com/leavedesk/leave-backend-go/internal/pkg/oauth"
	"github.com/leavedesk/leave-backend-go/internal/repository/postgresql"
	authService "github.com/leavedesk/leave-backend-go/internal/service/auth"
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
	transactor := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	GoogleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL)

	service := authService.NewAuthService(userRepo, transactor, JWTService, GoogleService)

	authHandler := appHTTP.NewAuthHandler(service, JWTService)
	router := appHTTP.NewAuthRouter(authHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Auth server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
