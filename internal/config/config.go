package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	JWTSecret     string
	JWTExpiration time.Duration
	GinMode       string
	ServerPort    string
	OpenAIAPIKey  string
}

// requiredKeys must be present in the environment; the server refuses to start without them.
var requiredKeys = []string{"JWT_SECRET", "SESSION_SECRET"}

// Load reads configuration from an optional .env file and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "scrumuser")
	v.SetDefault("DB_PASSWORD", "scrumpassword")
	v.SetDefault("DB_NAME", "scrumboard")
	v.SetDefault("DB_PATH", "data/scrumboard.db")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("OPENAI_API_KEY", "")

	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	driver := strings.ToLower(v.GetString("DB_DRIVER"))
	switch driver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	jwtExpiration := v.GetDuration("JWT_EXPIRATION")
	if jwtExpiration <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION must be a positive duration")
	}

	return &Config{
		DBDriver:      driver,
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBPath:        v.GetString("DB_PATH"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTExpiration: jwtExpiration,
		GinMode:       v.GetString("GIN_MODE"),
		ServerPort:    v.GetString("SERVER_PORT"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
	}, nil
}
