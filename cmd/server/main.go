package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ozgekaya/student-info-api/internal/config"
	"github.com/ozgekaya/student-info-api/internal/database"
	"github.com/ozgekaya/student-info-api/internal/handler"
	"github.com/ozgekaya/student-info-api/internal/middleware"
	"github.com/ozgekaya/student-info-api/internal/queue"
	"github.com/ozgekaya/student-info-api/internal/repository"
	"github.com/ozgekaya/student-info-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	students := repository.NewStudentRepo(db)
	teachers := repository.NewTeacherRepo(db)
	courses := repository.NewCourseRepo(db)

	e := echo.New()
	e.HideBanner = true

	// Rate limiting degrades to a pass-through when Redis is absent.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users),
		Users:    handler.NewUserHandler(cfg, users),
		Students: handler.NewStudentHandler(cfg, users, students, teachers),
		Teachers: handler.NewTeacherHandler(cfg, users, teachers),
		Courses:  handler.NewCourseHandler(cfg, courses, teachers, students),
	}, cfg.JWTSecret)

	// The enrollment consumer reconnects forever in the background.
	go func() {
		if err := queue.StartEnrollmentConsumer(); err != nil {
			log.Printf("enrollment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// Stop accepting on SIGINT/SIGTERM, drain in-flight requests, then
	// let the deferred db.Close run.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
