// Управление конфигурацией сервиса редактора из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Валидация обязательных переменных (API_URL).
//   - Преобразование типов данных из переменных окружения (string, int, bool, список строк).
//   - Маскировка секретных значений (ключи, токены) в логах.
//   - Значения по умолчанию и ограничения для адресов, таймаутов и числа повторов.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"
)

const (
	SessionCheckUpstream = "upstream"
	SessionCheckJWT      = "jwt"
	SessionCheckCookie   = "cookie"
)

type Config struct {
	APIURLRaw string `env:"API_URL"`
	APIURL    *url.URL

	ListenAddr  string `env:"LISTEN_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	SecretKey string `env:"SECRET_KEY"`

	FrontFilesPath string `env:"FRONT_PATH"`

	SessionCheck  string   `env:"SESSION_CHECK"`
	Locales       []string `env:"LOCALES"`
	LoginPath     string   `env:"LOGIN_PATH"`
	DashboardPath string   `env:"DASHBOARD_PATH"`

	DraftSessionTTLMinutes int `env:"DRAFT_SESSION_TTL"`

	UpstreamRetries        int `env:"UPSTREAM_RETRIES"`
	UpstreamTimeoutSeconds int `env:"UPSTREAM_TIMEOUT"`

	MinifyHTML bool `env:"MINIFY_HTML"`
}

func (c *Config) DraftSessionTTL() time.Duration {
	return time.Duration(c.DraftSessionTTLMinutes) * time.Minute
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// ReadConfig загружает конфигурацию и завершает работу приложения, если обязательные переменные не заданы или некорректны.
func ReadConfig() *Config {
	config, err := Load()
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}
	return config
}

// Load читает переменные окружения, проверяет обязательные и выставляет значения по умолчанию.
func Load() (*Config, error) {
	config := &Config{}

	envConfig("env", config)

	// Check required envs
	if config.APIURLRaw == "" {
		return nil, errors.New("API_URL is required")
	}
	u, err := url.Parse(config.APIURLRaw)
	if err != nil {
		return nil, fmt.Errorf("API_URL incorrect: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_URL must be absolute: %q", config.APIURLRaw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	config.APIURL = u

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = ":2112"
	}

	switch config.SessionCheck {
	case SessionCheckUpstream, SessionCheckCookie:
	case SessionCheckJWT:
		if config.SecretKey == "" {
			return nil, errors.New("SECRET_KEY is required for jwt session check")
		}
	case "":
		config.SessionCheck = SessionCheckUpstream
	default:
		return nil, fmt.Errorf("unknown SESSION_CHECK %q", config.SessionCheck)
	}

	if len(config.Locales) == 0 {
		config.Locales = []string{"en", "zh"}
	}
	if config.LoginPath == "" {
		config.LoginPath = "/login"
	}
	if config.DashboardPath == "" {
		config.DashboardPath = "/dashboard"
	}

	if config.DraftSessionTTLMinutes <= 0 {
		config.DraftSessionTTLMinutes = 60
	}
	if config.UpstreamRetries < 0 || config.UpstreamRetries > 10 {
		config.UpstreamRetries = 3
	}
	if config.UpstreamTimeoutSeconds <= 0 {
		config.UpstreamTimeoutSeconds = 15
	}

	return config, nil
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" || !Exist(fEnvTag) {
			continue
		}

		logValue := GetEnv(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure secrets in log
		if isSecretField(fName) {
			logValue = maskValue(logValue)
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		case []string:
			v.Field(i).Set(reflect.ValueOf(GetListEnv(fEnvTag)))
		}
	}
}

func isSecretField(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "pass") || strings.Contains(name, "secret") || strings.Contains(name, "token")
}

// maskValue оставляет видимыми первый и последний символы.
func maskValue(val string) string {
	runes := []rune(val)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
