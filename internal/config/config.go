package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config reúne tudo que vem do ambiente, lido uma única vez na subida.
// Ninguém fora deste pacote consulta os.Getenv.
type Config struct {
	APIURL        string
	Port          string
	RedisHost     string
	RedisPassword string
	JWTSecret     string
	SessionSecret string
	SessionTTL    time.Duration
}

// Load carrega o .env (se existir) e monta a configuração tipada. API_URL e
// SESSION_SECRET são obrigatórios; sem eles o gateway nem sobe.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️ Nenhum arquivo .env encontrado — seguindo com as variáveis do sistema")
	} else {
		log.Println("✅ Arquivo .env carregado")
	}

	cfg := Config{
		APIURL:        os.Getenv("API_URL"),
		Port:          getenv("PORT", "8080"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    30 * time.Minute,
	}

	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.SessionTTL = d
		} else {
			log.Printf("⚠️ SESSION_TTL inválido (%q) — usando %s", raw, cfg.SessionTTL)
		}
	}

	if cfg.APIURL == "" {
		log.Fatal("❌ API_URL não configurada — o gateway não sabe onde fica a API do marketplace")
	}
	if cfg.SessionSecret == "" {
		log.Fatal("❌ SESSION_SECRET ausente no .env")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
