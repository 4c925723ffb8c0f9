package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fuchsia74/bedrock-gateway/controller"
	"github.com/fuchsia74/bedrock-gateway/middleware"
	"github.com/fuchsia74/bedrock-gateway/model"
)

// SetRouter registers all routes. CORS runs before auth so OPTIONS preflight
// requests are answered without touching the token store or request body.
func SetRouter(engine *gin.Engine, relay *controller.Relay, store model.TokenStore) {
	engine.Use(middleware.RequestId())
	engine.Use(middleware.RelayPanicRecover())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	engine.GET("/healthz", controller.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	v1.Use(middleware.TokenAuth(store, time.Now))
	{
		v1.POST("/chat/completions", relay.ChatCompletions)
		v1.GET("/models", relay.ListModels)
	}
}
