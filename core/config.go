package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugAddr                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	SummarizerConfig struct {
		Enabled  bool
		Endpoint string
		Model    string
		Timeout  time.Duration
	}

	GoalConfig struct {
		// CheckSchedule is a cron spec (with seconds) for the weekly-goal checker.
		CheckSchedule string
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string
		AppName  string

		SecretKey       string
		FrontendBaseURL string
		WorkDir         string

		DefaultFromEmail              mail.Address
		PasswordResetTimeoutDelta     time.Duration
		EmailVerificationTimeoutDelta time.Duration

		SendgridApiKey string
		RollbarToken   string

		Server     ServerConfig
		Database   DatabaseConfig
		Summarizer SummarizerConfig
		Goal       GoalConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// NewConfig loads the app configuration: defaults first, then an optional
// config/.env.<env> file, then environment variables prefixed with <ENV>_.
func NewConfig(build string) *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	wd := Getwd()

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Somo")
	conf.SetDefault("secretKey", "w#e0y-1t&5$8s0m0b(ckxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("emailVerificationTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.addr", ":8000")
	conf.SetDefault("server.debugAddr", ":8001")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "somo")
	conf.SetDefault("database.user", "somo")
	conf.SetDefault("database.password", "somo")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.disableTls", true)

	conf.SetDefault("summarizer.enabled", false)
	conf.SetDefault("summarizer.endpoint", "http://localhost:11434")
	conf.SetDefault("summarizer.model", "llama3.2")
	conf.SetDefault("summarizer.timeout", 30*time.Second)

	// sec min hour dom month dow
	conf.SetDefault("goal.checkSchedule", "0 0 18 * * *")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		Env:      env,
		Build:    build,
		AppName:  conf.GetString("appName"),

		SecretKey:       conf.GetString("secretKey"),
		FrontendBaseURL: conf.GetString("frontendBaseUrl"),
		WorkDir:         wd,

		DefaultFromEmail:              mail.Address{Address: conf.GetString("defaultFromEmail")},
		PasswordResetTimeoutDelta:     conf.GetDuration("passwordResetTimeoutDelta"),
		EmailVerificationTimeoutDelta: conf.GetDuration("emailVerificationTimeoutDelta"),

		SendgridApiKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Addr:                      conf.GetString("server.addr"),
			DebugAddr:                 conf.GetString("server.debugAddr"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			DisableTLS:    conf.GetBool("database.disableTls"),
		},
		Summarizer: SummarizerConfig{
			Enabled:  conf.GetBool("summarizer.enabled"),
			Endpoint: conf.GetString("summarizer.endpoint"),
			Model:    conf.GetString("summarizer.model"),
			Timeout:  conf.GetDuration("summarizer.timeout"),
		},
		Goal: GoalConfig{
			CheckSchedule: conf.GetString("goal.checkSchedule"),
		},
	}
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests... this breaks our code...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // fall back to the actual working directory
		}
		currDir = newDir
	}
}
