package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("testMode", false)
	Conf.SetDefault("appName", "ARC Portal")
	Conf.SetDefault("serverAddress", ":8000")
	Conf.SetDefault("secretKey", "x#2b8mqz)4c&0n$!7u^ety@5v(p+1wfj9g_k6h3s%rdl*oai-c")
	Conf.SetDefault("defaultFromEmail", "noreply@localhost")
	Conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	Conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	Conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	Conf.SetDefault("sendgridApiKey", "")
	Conf.SetDefault("rollbarToken", "")
	Conf.SetDefault("geminiApiKey", "")
	Conf.SetDefault("geminiModel", "gemini-2.5-flash")
	Conf.SetDefault("blobRootDir", filepath.Join(os.TempDir(), "arcportal-blobs"))
	Conf.SetDefault("blobBaseURL", "http://localhost:8000/media")

	Conf.SetDefault("database.engine", "postgres")
	Conf.SetDefault("database.name", "arcportal")
	Conf.SetDefault("database.host", "localhost")
	Conf.SetDefault("database.port", "5432")
	Conf.SetDefault("database.user", "arcportal")
	Conf.SetDefault("database.password", "arcportal")
	Conf.SetDefault("database.disableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		Conf.SetDefault("testMode", true)
	}
	Conf.SetEnvPrefix(env)
	Conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}

// ValidateConf sanity-checks required settings on startup.
func ValidateConf() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(Conf.GetString("appName"), "appName"),
		vala.StringNotEmpty(Conf.GetString("secretKey"), "secretKey"),
		vala.StringNotEmpty(Conf.GetString("serverAddress"), "serverAddress"),
		vala.StringNotEmpty(Conf.GetString("database.engine"), "database.engine"),
		vala.StringNotEmpty(Conf.GetString("database.name"), "database.name"),
	).Check()
}

// Getwd returns the current working directory or dies trying.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}
	return wd
}
