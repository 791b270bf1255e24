package main

import (
	"context"
	"log"
	"os"

	"stockroom/cmd"
	"stockroom/internal/core/container"
	"stockroom/internal/core/routes"
	"stockroom/internal/database"
	"stockroom/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	cmd.Execute(ctx)
}

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer db.Close()

	log.Println("Connected to the database successfully!")

	appContainer := container.NewAppContainer(db)

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware())

	routes.RegisterUtilityRoutes(router)
	routes.RegisterPublicRoutes(router, appContainer)
	routes.RegisterProtectedRoutes(router, appContainer)

	if err := router.Run(os.Getenv("APP_HOST")); err != nil {
		panic(err)
	}
}
