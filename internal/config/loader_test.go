package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pkodial/tulubot/internal/config"
)

const fullConfig = `
server:
  listen_addr: ":8080"
  log_level: debug
discord:
  token: "bot-token"
  guild_id: "g1"
store:
  postgres_dsn: "postgres://localhost/tulubot"
  connect_timeout: 5s
translate:
  strategy: race
  timeout: 6s
  backends:
    - type: openai
      api_key: "sk-test"
      model: gpt-4o-mini
    - type: anyllm
      provider: ollama
      model: llama3
    - type: rest
      base_url: "https://api.mymemory.translated.net/get"
      lang_pair: "en|tcy"
cache:
  taught_ttl: 5m
  api_max_age: 168h
teach:
  state_ttl: 10m
keepalive:
  url: "http://localhost:8080/healthz"
  interval: 10m
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(fullConfig))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" || cfg.Server.LogLevel != config.LogDebug {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Discord.Token != "bot-token" {
		t.Fatalf("discord = %+v", cfg.Discord)
	}
	if got := cfg.Translate.Timeout.Std(); got != 6*time.Second {
		t.Fatalf("translate.timeout = %v", got)
	}
	if len(cfg.Translate.Backends) != 3 {
		t.Fatalf("backends = %d, want 3", len(cfg.Translate.Backends))
	}
	if got := cfg.Cache.APIMaxAge.Std(); got != 168*time.Hour {
		t.Fatalf("cache.api_max_age = %v", got)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
discord:
  token: "t"
  bogus_field: true
`))
	if err == nil {
		t.Fatal("LoadFromReader accepted an unknown field")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"missing token",
			`server: {log_level: info}`,
			"discord.token is required",
		},
		{
			"bad log level",
			"discord: {token: t}\nserver: {log_level: loud}",
			"server.log_level",
		},
		{
			"bad strategy",
			"discord: {token: t}\ntranslate: {strategy: parallel}",
			"translate.strategy",
		},
		{
			"openai without key",
			"discord: {token: t}\ntranslate: {backends: [{type: openai, model: gpt-4o}]}",
			"api_key is required",
		},
		{
			"anyllm bad provider",
			"discord: {token: t}\ntranslate: {backends: [{type: anyllm, provider: foo, model: m}]}",
			"provider",
		},
		{
			"rest without url",
			"discord: {token: t}\ntranslate: {backends: [{type: rest}]}",
			"base_url is required",
		},
		{
			"unknown backend type",
			"discord: {token: t}\ntranslate: {backends: [{type: teapot}]}",
			"type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatal("LoadFromReader accepted invalid config")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want to mention %q", err, tc.want)
			}
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
discord: {token: t}
translate: {timeout: banana}
`))
	if err == nil || !strings.Contains(err.Error(), "duration") {
		t.Fatalf("err = %v, want duration parse failure", err)
	}
}
