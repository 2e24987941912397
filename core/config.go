package core

import (
	"fmt"
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
	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string

		Server   ServerConfig
		Database DatabaseConfig
		Risk     RiskConfig
		Tickets  TicketConfig
		Alerts   AlertConfig

		SendgridApiKey   string
		RollbarToken     string
		TwilioAccountSID string
		TwilioAuthToken  string
		TwilioFromNumber string

		defaultFromEmail string
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// RiskConfig selects the named scoring variants observed across
	// deployments; they are configuration, not code.
	RiskConfig struct {
		LevelScheme       string  // "three-tier" | "two-tier"
		GradeBands        string  // "default" | "legacy"
		MaxPeriodicMarks  float64 // full marks of a periodic test
		AlertThreshold    float64 // attendance below this is alert-worthy
		HighRiskThreshold int     // dashboard high-risk cutoff (50 and 70 both observed)
		UnmatchedPolicy   string  // "reject" | "create"
	}

	TicketConfig struct {
		// AnsweredStatus is the status forced by attaching a reply:
		// "In Progress" (default) or "Replied" (alternate deployment).
		AnsweredStatus string
	}

	AlertConfig struct {
		SendTimeout time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "EduRisk")
	v.SetDefault("build", "dev")
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "edurisk")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseUser", "edurisk")
	v.SetDefault("databaseDisableTLS", true)

	v.SetDefault("riskLevelScheme", "three-tier")
	v.SetDefault("riskGradeBands", "default")
	v.SetDefault("riskMaxPeriodicMarks", 50.0)
	v.SetDefault("riskAlertThreshold", 60.0)
	v.SetDefault("riskHighRiskThreshold", 70)
	v.SetDefault("riskUnmatchedPolicy", "reject")

	v.SetDefault("ticketAnsweredStatus", "In Progress")
	v.SetDefault("alertSendTimeout", 5*time.Second)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:  v.GetString("appName"),
		Env:      env,
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Build:    v.GetString("build"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Addr:            v.GetString("serverAddr"),
			DebugHost:       v.GetString("serverDebugHost"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetString("databasePort"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
		Risk: RiskConfig{
			LevelScheme:       v.GetString("riskLevelScheme"),
			GradeBands:        v.GetString("riskGradeBands"),
			MaxPeriodicMarks:  v.GetFloat64("riskMaxPeriodicMarks"),
			AlertThreshold:    v.GetFloat64("riskAlertThreshold"),
			HighRiskThreshold: v.GetInt("riskHighRiskThreshold"),
			UnmatchedPolicy:   v.GetString("riskUnmatchedPolicy"),
		},
		Tickets: TicketConfig{
			AnsweredStatus: v.GetString("ticketAnsweredStatus"),
		},
		Alerts: AlertConfig{
			SendTimeout: v.GetDuration("alertSendTimeout"),
		},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		TwilioAccountSID: v.GetString("twilioAccountSid"),
		TwilioAuthToken:  v.GetString("twilioAuthToken"),
		TwilioFromNumber: v.GetString("twilioFromNumber"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}
