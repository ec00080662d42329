package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient fica nil quando o Redis não está configurado; quem depende dele
// (rate limit) trata nil como "deixa passar".
var RedisClient *redis.Client

// InitRedis abre a conexão e valida com um ping.
func InitRedis(host, password string) error {
	if host == "" {
		return fmt.Errorf("REDIS_HOST não configurado")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         host,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("impossível conectar ao Redis: %v", err)
	}

	RedisClient = client
	log.Println("✅ Redis conectado")
	return nil
}

// CloseRedis fecha a conexão, se houver.
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// CountRequest incrementa o contador de janela fixa da chave e devolve o
// total corrente. A janela renova a cada incremento, o que basta para
// proteger a API de rajadas.
func CountRequest(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := RedisClient.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
