package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mercado_gateway/internal/cache"
)

const (
	// Limite geral da API, por IP e por minuto
	APIMaxRequests = 100
	APICooldown    = 1 * time.Minute
)

// APIRateLimit limita requisições por IP com janela fixa no Redis. Redis fora
// do ar deixa passar: limitar é proteção, não dependência dura do gateway.
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cache.RedisClient == nil {
			c.Next()
			return
		}

		key := "ratelimit:api:" + c.ClientIP()
		count, err := cache.CountRequest(c.Request.Context(), key, APICooldown)
		if err != nil {
			log.Printf("⚠️ Rate limit indisponível: %v", err)
			c.Next()
			return
		}

		if count > APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Muitas requisições, aguarde um instante"})
			c.Abort()
			return
		}

		c.Next()
	}
}
