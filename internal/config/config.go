package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendRedis    = "redis"
	StorageBackendMemory   = "memory"
)

type Application struct {
	Host          string        `koanf:"host"`
	Listen        string        `koanf:"listen"`
	Storage       Storage       `koanf:"storage"`
	Database      Database      `koanf:"db"`
	Gemini        Gemini        `koanf:"gemini"`
	Notifications Notifications `koanf:"notifications"`
}

type Storage struct {
	// Backend is one of "postgres", "redis" or "memory".
	Backend string `koanf:"backend"`
	Redis   Redis  `koanf:"redis"`
}

type Redis struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"keyprefix"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Gemini struct {
	ApiKey      string  `koanf:"apikey"`
	Model       string  `koanf:"model"`
	Temperature float32 `koanf:"temperature"`
	// KeyringService is the OS keyring service looked up when ApiKey is empty.
	KeyringService string `koanf:"keyringservice"`
}

type Notifications struct {
	PollInterval time.Duration `koanf:"pollinterval"`
	BriefingHour int           `koanf:"briefinghour"`
	// Timezone is an IANA name. Empty means the host zone.
	Timezone string `koanf:"timezone"`
	Language string `koanf:"language"`
	Icon     string `koanf:"icon"`
	// DefaultPermission answers the once-per-session permission request: "granted" or "denied".
	DefaultPermission string `koanf:"defaultpermission"`
	InboxSize         int    `koanf:"inboxsize"`
}

const keyringUser = "gemini"

func defaults() Application {
	return Application{
		Host:   "http://localhost:3000",
		Listen: ":8181",
		Storage: Storage{
			Backend: StorageBackendPostgres,
			Redis: Redis{
				Addr:      "localhost:6379",
				KeyPrefix: "",
			},
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "ischedule",
			Pass:   "",
			Name:   "ischedule",
			Schema: "ischedule",
		},
		Gemini: Gemini{
			Model:          "gemini-2.5-flash",
			Temperature:    0.7,
			KeyringService: "ischedule",
		},
		Notifications: Notifications{
			PollInterval:      10 * time.Second,
			BriefingHour:      5,
			Language:          "en",
			Icon:              "/favicon.ico",
			DefaultPermission: "granted",
			InboxSize:         50,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "ISCHEDULE_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "ISCHEDULE_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	if app.Gemini.ApiKey == "" && app.Gemini.KeyringService != "" {
		app.Gemini.ApiKey = apiKeyFromKeyring(app.Gemini.KeyringService)
	}

	return app, nil
}

// Location resolves the configured notification timezone, falling back to the host zone.
func (n Notifications) Location() *time.Location {
	if n.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(n.Timezone)
	if err != nil {
		log.Warnf("invalid timezone %q, using host zone: %v", n.Timezone, err)
		return time.Local
	}
	return loc
}

func apiKeyFromKeyring(service string) string {
	secret, err := keyring.Get(service, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			log.Debugf("no Gemini API key in keyring service %s", service)
		} else {
			log.Warnf("failed to read Gemini API key from keyring: %v", err)
		}
		return ""
	}
	return secret
}
