package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"mercado_gateway/internal/cache"
	"mercado_gateway/internal/cartapi"
	"mercado_gateway/internal/config"
	"mercado_gateway/internal/handlers"
	"mercado_gateway/internal/routes"
	"mercado_gateway/internal/session"
)

func main() {
	cfg := config.Load()

	if cfg.RedisHost != "" {
		if err := cache.InitRedis(cfg.RedisHost, cfg.RedisPassword); err != nil {
			log.Printf("⚠️ Redis indisponível (%v) — seguindo sem rate limit", err)
		}
	} else {
		log.Println("⚠️ REDIS_HOST não configurado — seguindo sem rate limit")
	}
	defer cache.CloseRedis()

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	client := cartapi.NewClient(cfg.APIURL, nil)
	registry := session.NewRegistry(store, client, cfg.SessionTTL)
	defer registry.CloseAll()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
	}))

	h := &handlers.CartHandler{Sessions: registry}
	routes.RegisterRoutes(r, h, []byte(cfg.JWTSecret))

	log.Println("🚀 Gateway do marketplace ouvindo na porta", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("❌ Servidor caiu:", err)
	}
}
