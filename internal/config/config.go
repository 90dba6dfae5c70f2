package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Jwt      Jwt      `koanf:"jwt"`
	Llm      Llm      `koanf:"llm"`
	Smtp     Smtp     `koanf:"smtp"`
	Chat     Chat     `koanf:"chat"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Jwt struct {
	Secret string `koanf:"secret"`
	// ExpirationSeconds is the token lifetime in seconds.
	ExpirationSeconds int64 `koanf:"expirationseconds"`
}

type Llm struct {
	BaseUrl string `koanf:"baseurl"`
	ApiKey  string `koanf:"apikey"`
	Model   string `koanf:"model"`
}

type Smtp struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

type Chat struct {
	// RequestsPerMinute caps chat sends per account.
	RequestsPerMinute int `koanf:"requestsperminute"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Server: Server{
			Addr: ":8080",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "bizmate",
			Pass:   "",
			Name:   "bizmate",
			Schema: "bizmate",
		},
		Jwt: Jwt{
			ExpirationSeconds: 86400,
		},
		Llm: Llm{
			BaseUrl: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Chat: Chat{
			RequestsPerMinute: 20,
		},
	}, "koanf"), nil)
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
		Prefix: "BIZMATE_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "BIZMATE_")), "_", ".")
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

	return app, nil
}
