package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"ranking-gateway/gateway/infra"
)

type config struct {
	listenAddr string
	logLevel   string
	logFormat  string

	upstreamURL        string
	upstreamTimeout    time.Duration
	upstreamCooldown   time.Duration
	upstreamMaxPending int
	minNameLength      int

	redisURL        string
	cachePrefix     string
	cacheMaxEntries int

	rateEnabled        bool
	rateRPS            float64
	rateBurst          int
	rateKeyHeader      string
	trustXFF           bool
	retryAfter         time.Duration
	addHeaders         bool
	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsEnabled   bool
	statsPrefix    string
	statsTTL       time.Duration
	statsBucket    string
	statsTrackKeys bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.logLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.logFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))

	cfg.upstreamURL = getenvDefault("UPSTREAM_BASE_URL", infra.DefaultRankingURL)
	cfg.upstreamTimeout = getenvDurationDefault("UPSTREAM_TIMEOUT", 10*time.Second)
	cfg.upstreamCooldown = getenvDurationDefault("UPSTREAM_COOLDOWN", 1*time.Second)
	cfg.upstreamMaxPending = getenvIntDefault("UPSTREAM_MAX_PENDING", 25)
	cfg.minNameLength = getenvIntDefault("MIN_NAME_LENGTH", 3)

	cfg.redisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.cachePrefix = getenvDefault("CACHE_PREFIX", "ranking-gateway")
	cfg.cacheMaxEntries = getenvIntDefault("CACHE_MAX_ENTRIES", 10000)

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateRPS = getenvFloatDefault("RATE_RPS", 5)
	// Com RPS abaixo de 1, o burst padrão deixaria passar uma rajada inteira
	// antes do limiter agir; nesse caso o padrão cai para 1.
	if burst, ok := getenvInt("RATE_BURST"); ok {
		cfg.rateBurst = burst
	} else {
		cfg.rateBurst = 10
		if getenvIsSet("RATE_RPS") && cfg.rateRPS > 0 && cfg.rateRPS < 1 {
			cfg.rateBurst = 1
		}
	}
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 200)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", true)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "ranking-gateway:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", false)

	if cfg.upstreamTimeout <= 0 {
		return config{}, errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	if cfg.upstreamCooldown < 0 {
		return config{}, errors.New("UPSTREAM_COOLDOWN must be >= 0")
	}
	if cfg.upstreamMaxPending <= 0 {
		return config{}, errors.New("UPSTREAM_MAX_PENDING must be > 0")
	}
	if cfg.minNameLength <= 0 {
		return config{}, errors.New("MIN_NAME_LENGTH must be > 0")
	}
	if cfg.cacheMaxEntries < 0 {
		return config{}, errors.New("CACHE_MAX_ENTRIES must be >= 0")
	}
	if cfg.rateEnabled && cfg.rateRPS <= 0 {
		return config{}, errors.New("RATE_RPS must be > 0")
	}
	if cfg.rateEnabled && cfg.rateBurst <= 0 {
		return config{}, errors.New("RATE_BURST must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvParsed devolve def quando a variável está vazia ou não faz parse.
func getenvParsed[T any](k string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenvIntDefault(k string, def int) int {
	return getenvParsed(k, def, strconv.Atoi)
}

func getenvFloatDefault(k string, def float64) float64 {
	return getenvParsed(k, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func getenvBoolDefault(k string, def bool) bool {
	return getenvParsed(k, def, strconv.ParseBool)
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	return getenvParsed(k, def, time.ParseDuration)
}

func getenvInt(k string) (int, bool) {
	if !getenvIsSet(k) {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	return i, err == nil
}

func getenvIsSet(k string) bool {
	v, ok := os.LookupEnv(k)
	return ok && v != ""
}
