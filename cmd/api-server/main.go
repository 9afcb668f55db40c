package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"github.com/hackerforce/platform/internal/boot"
	"github.com/hackerforce/platform/internal/handlers"
	"github.com/hackerforce/platform/internal/notify"
	"github.com/hackerforce/platform/internal/service/auth"
	"github.com/hackerforce/platform/internal/service/course"
	"github.com/hackerforce/platform/internal/service/subscription"
	"github.com/hackerforce/platform/internal/store"
)

const subscriptionSweepInterval = time.Hour

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	db, err := store.Open(config)
	if err != nil {
		log.Fatalf("opening store: %+v", err)
	}
	defer db.Close()

	limiter, err := store.NewRateLimiter(config.RateLimit.Points, config.RateLimit.Duration)
	if err != nil {
		log.Fatalf("creating rate limiter: %+v", err)
	}
	defer limiter.Close()

	notifier := notify.New(config)
	authService := auth.New(config, db, notifier)
	subscriptionService := subscription.New(db, notifier)
	courseService := course.New(db, subscriptionService)

	server := echo.New()
	server.Use(middleware.BodyLimit("10M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("hackerforce"))
	server.Use(middleware.Recover())
	server.Use(handlers.RateLimit(limiter))

	server.Logger.SetLevel(log.INFO)

	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID}
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(config.Server.Origins, ","),
		AllowHeaders:     headers,
		AllowCredentials: true,
	}))

	server.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	authenticated := handlers.Authenticate([]byte(config.JWT.Secret), db)

	authRoutes := server.Group("/api/auth")
	authRoutes.POST("/register", handlers.Register(authService))
	authRoutes.POST("/login", handlers.Login(authService))
	authRoutes.POST("/forgot-password", handlers.ForgotPassword(authService))
	authRoutes.POST("/reset-password", handlers.ResetPassword(authService))
	authRoutes.POST("/logout", handlers.Logout(authService), authenticated)

	courseRoutes := server.Group("/api/courses")
	courseRoutes.GET("", handlers.ListCourses(courseService))
	courseRoutes.GET("/sections/stats", handlers.GetSectionStats(courseService))
	courseRoutes.GET("/user/me", handlers.GetUserCourses(courseService), authenticated)
	courseRoutes.GET("/:id", handlers.GetCourse(courseService))
	courseRoutes.POST("/:id/start", handlers.StartCourse(courseService), authenticated)
	courseRoutes.PUT("/:id/progress", handlers.UpdateProgress(courseService), authenticated)
	courseRoutes.GET("/:id/progress", handlers.GetProgress(courseService), authenticated)
	courseRoutes.POST("/:id/retake", handlers.RetakeCourse(courseService), authenticated)

	subscriptionRoutes := server.Group("/api/subscriptions", authenticated)
	subscriptionRoutes.POST("", handlers.Subscribe(subscriptionService))
	subscriptionRoutes.DELETE("", handlers.CancelSubscription(subscriptionService))
	subscriptionRoutes.GET("/me", handlers.GetSubscription(subscriptionService))

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(subscriptionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := subscriptionService.ProcessExpired(); err != nil {
					log.Errorf("processing expired subscriptions: %+v", err)
				}
			case <-done:
				return
			}
		}
	}()

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	close(done)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
