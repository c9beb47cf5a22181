package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sesoko-server/internal/modules/tank/types"
)

const (
	defaultCSVBaseURL = "http://ik1-420-42083.vs.sakura.ne.jp/~isari/NAICe/"

	FallbackDummy = "dummy"
	FallbackError = "error"
)

// Config is built once at startup and passed around by value. Nothing mutates it afterwards.
type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// CSVBaseURL is the directory holding the daily YYYYMMDD.csv files.
	CSVBaseURL    string
	FetchTimeout  time.Duration
	FetchMaxBytes int64

	// DataUTCOffsetHours fixes the zone used for "today" and for naive CSV timestamps.
	DataUTCOffsetHours int
	DefaultTank        string
	DefaultMetric      string
	FallbackPolicy     string

	ChartWidth  int
	ChartHeight int

	// MQTT publishing is disabled when MQTTBroker is empty.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string
}

// DataLocation returns the fixed zone the remote files are named in.
func (c Config) DataLocation() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.DataUTCOffsetHours), c.DataUTCOffsetHours*3600)
}

// MQTTEnabled reports whether a broker was configured.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	baseURL := strings.TrimSpace(os.Getenv("CSV_BASE_URL"))
	if baseURL == "" {
		baseURL = defaultCSVBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid CSV_BASE_URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Config{}, fmt.Errorf("invalid CSV_BASE_URL %q (scheme must be http or https)", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	fetchTimeoutStr := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT"))
	if fetchTimeoutStr == "" {
		fetchTimeoutStr = "5s"
	}
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT %q: %w", fetchTimeoutStr, err)
	}
	if fetchTimeout < time.Second || fetchTimeout > time.Minute {
		return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT %q (must be between 1s and 1m)", fetchTimeoutStr)
	}

	maxBytesStr := strings.TrimSpace(os.Getenv("FETCH_MAX_BYTES"))
	if maxBytesStr == "" {
		maxBytesStr = "8388608"
	}
	maxBytes, err := strconv.ParseInt(maxBytesStr, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid FETCH_MAX_BYTES %q: %w", maxBytesStr, err)
	}
	if maxBytes <= 0 {
		return Config{}, fmt.Errorf("invalid FETCH_MAX_BYTES %q (must be > 0)", maxBytesStr)
	}

	offsetStr := strings.TrimSpace(os.Getenv("DATA_UTC_OFFSET_HOURS"))
	if offsetStr == "" {
		offsetStr = "9"
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DATA_UTC_OFFSET_HOURS %q: %w", offsetStr, err)
	}
	if offset < -12 || offset > 14 {
		return Config{}, fmt.Errorf("invalid DATA_UTC_OFFSET_HOURS %q (must be between -12 and 14)", offsetStr)
	}

	defaultTank := strings.TrimSpace(os.Getenv("DEFAULT_TANK"))
	if err := types.ValidateTank(defaultTank); err != nil {
		return Config{}, fmt.Errorf("invalid DEFAULT_TANK %q: %w", defaultTank, err)
	}

	defaultMetric := strings.ToLower(strings.TrimSpace(os.Getenv("DEFAULT_METRIC")))
	if defaultMetric == "" {
		defaultMetric = "temp"
	}
	switch defaultMetric {
	case "temp", "do", "ph", "salt":
	default:
		return Config{}, fmt.Errorf("invalid DEFAULT_METRIC %q (allowed: temp, do, ph, salt)", defaultMetric)
	}

	policy := strings.ToLower(strings.TrimSpace(os.Getenv("FALLBACK_POLICY")))
	if policy == "" {
		policy = FallbackDummy
	}
	switch policy {
	case FallbackDummy, FallbackError:
	default:
		return Config{}, fmt.Errorf("invalid FALLBACK_POLICY %q (allowed: dummy, error)", policy)
	}

	width, err := parsePositiveInt("CHART_WIDTH", "600")
	if err != nil {
		return Config{}, err
	}
	height, err := parsePositiveInt("CHART_HEIGHT", "400")
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	mqttPort, err := parsePositiveInt("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "sesoko-server"
	}
	mqttTopicPrefix := strings.Trim(strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX")), "/")
	if mqttTopicPrefix == "" {
		mqttTopicPrefix = "sesoko/tanks"
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           httpAddr,
		CSVBaseURL:         baseURL,
		FetchTimeout:       fetchTimeout,
		FetchMaxBytes:      maxBytes,
		DataUTCOffsetHours: offset,
		DefaultTank:        defaultTank,
		DefaultMetric:      defaultMetric,
		FallbackPolicy:     policy,
		ChartWidth:         width,
		ChartHeight:        height,
		MQTTBroker:         mqttBroker,
		MQTTPort:           mqttPort,
		MQTTClientID:       mqttClientID,
		MQTTTopicPrefix:    mqttTopicPrefix,
	}, nil
}

func parsePositiveInt(key, def string) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q (must be > 0)", key, s)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
