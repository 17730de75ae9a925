package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuslink/warden/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	router.GET("/healthz", handlers.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	auth := router.Group("/auth")
	{
		auth.POST("/signup", handlers.Signup)
		auth.POST("/login", handlers.Login)
		auth.POST("/verify-otp", handlers.VerifyOTP)
		auth.POST("/resend-otp", handlers.ResendOTP)
		auth.GET("/me", AuthMiddleware(authService), handlers.Me)
	}

	return router
}
