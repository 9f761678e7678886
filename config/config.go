package config

import (
	"flag"
	"os"
	"sync"
	"time"
)

const (
	defaultServerAddress  = ":8080"
	defaultDatabaseDSN    = ""
	defaultMpesaAddr      = "http://localhost:8181"
	defaultPesapalAddr    = "http://localhost:8182"
	defaultLogLevel       = "debug"
	defaultPollInterval   = 3 * time.Second
	defaultSessionTimeout = 5 * time.Minute
	defaultStaffLogin     = "admin"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	MpesaAddr      string
	PesapalAddr    string
	LogLevel       string
	PollInterval   time.Duration
	SessionTimeout time.Duration
	StaffLogin     string
	// bcrypt hash of the staff password
	StaffPasswordHash string
	AuthTokenKey      string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "payrecon server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "payrecon database DSN")
		flag.StringVar(&cfg.MpesaAddr, "m", defaultMpesaAddr, "mpesa bridge address")
		flag.StringVar(&cfg.PesapalAddr, "p", defaultPesapalAddr, "pesapal bridge address")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.DurationVar(&cfg.PollInterval, "i", defaultPollInterval, "reconciliation poll interval")
		flag.DurationVar(&cfg.SessionTimeout, "t", defaultSessionTimeout, "payment session timeout")

		flag.Parse()

		cfg.StaffLogin = defaultStaffLogin

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if mpesaAddrEnv := os.Getenv("MPESA_BRIDGE_ADDRESS"); mpesaAddrEnv != "" {
			cfg.MpesaAddr = mpesaAddrEnv
		}
		if pesapalAddrEnv := os.Getenv("PESAPAL_BRIDGE_ADDRESS"); pesapalAddrEnv != "" {
			cfg.PesapalAddr = pesapalAddrEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}
		if pollIntervalEnv := os.Getenv("POLL_INTERVAL"); pollIntervalEnv != "" {
			if d, err := time.ParseDuration(pollIntervalEnv); err == nil {
				cfg.PollInterval = d
			}
		}
		if sessionTimeoutEnv := os.Getenv("SESSION_TIMEOUT"); sessionTimeoutEnv != "" {
			if d, err := time.ParseDuration(sessionTimeoutEnv); err == nil {
				cfg.SessionTimeout = d
			}
		}
		if staffLoginEnv := os.Getenv("STAFF_LOGIN"); staffLoginEnv != "" {
			cfg.StaffLogin = staffLoginEnv
		}
		cfg.StaffPasswordHash = os.Getenv("STAFF_PASSWORD_HASH")
		cfg.AuthTokenKey = os.Getenv("AUTH_TOKEN_KEY")

		singleton = &cfg
	})

	return singleton, nil
}
