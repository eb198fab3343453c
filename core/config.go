package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the process-wide configuration, loaded once at startup.
var Conf *Config

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	AppName  string

	API struct {
		// BaseURL is the single configurable root of the remote REST API.
		// No call site may hard-code its own host.
		BaseURL        string
		RequestTimeout time.Duration
	}

	Upload struct {
		// MaxSize is the default ceiling for uploaded media, in bytes.
		// Resources may override it downwards.
		MaxSize int64
	}

	Session struct {
		// Dir holds the persisted session file; empty falls back to
		// the user's home directory.
		Dir string
	}

	RollbarToken string
}

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Tom Education Admin")
	v.SetDefault("apiBaseUrl", "https://api.tom-education.uz")
	v.SetDefault("apiRequestTimeout", 20*time.Second)
	v.SetDefault("uploadMaxSize", int64(5<<20))
	v.SetDefault("sessionDir", "")
	v.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		AppName:      v.GetString("appName"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	Conf.API.BaseURL = v.GetString("apiBaseUrl")
	Conf.API.RequestTimeout = v.GetDuration("apiRequestTimeout")
	Conf.Upload.MaxSize = v.GetInt64("uploadMaxSize")
	Conf.Session.Dir = v.GetString("sessionDir")
}
