package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8000 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if c.Polygon.BaseURL != "https://api.polygon.io" || c.Polygon.Timeout != 10*time.Second {
		t.Fatalf("polygon = %+v", c.Polygon)
	}
	if c.Engine.DefaultRiskProfile != "moderate_aggressive" {
		t.Fatalf("risk profile = %q", c.Engine.DefaultRiskProfile)
	}
	if c.Cache.Enabled || c.Kafka.Enabled || c.ClickHouse.Enabled {
		t.Fatalf("optional infrastructure should be off by default")
	}
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(`
environment: prod
server:
  port: 9090
polygon:
  api_key: k
  timeout: 3s
cache:
  enabled: true
  backend: redis
  ttl: 1m
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 9090 || c.Polygon.APIKey != "k" || c.Polygon.Timeout != 3*time.Second {
		t.Fatalf("unexpected %+v", c)
	}
	if !c.Cache.Enabled || c.Cache.Backend != "redis" || c.Cache.TTL != time.Minute {
		t.Fatalf("cache = %+v", c.Cache)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bad cache backend": "environment: x\ncache:\n  enabled: true\n  backend: memcached\n",
		"kafka no brokers":  "environment: x\nkafka:\n  enabled: true\n",
		"bad port":          "environment: x\nserver:\n  port: 70000\n",
		"consumer alone":    "environment: x\nkafka:\n  enabled: true\n  brokers: [b:9092]\n  consumer:\n    enabled: true\n",
		"max strategies":    "environment: x\nengine:\n  default_max_strategies: 25\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("environment: test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POLYGON_API_KEY", "from-env")
	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,http://localhost:3000")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Polygon.APIKey != "from-env" || c.Server.Port != 8181 {
		t.Fatalf("env not applied: %+v", c)
	}
	if len(c.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
	if len(c.Server.CORSOrigins) != 2 || c.Server.CORSOrigins[1] != "http://localhost:3000" {
		t.Fatalf("cors origins = %v", c.Server.CORSOrigins)
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(c.Server.CORSOrigins) != 1 || c.Server.CORSOrigins[0] != "*" || !c.Server.CORSAllowCredentials {
		t.Fatalf("cors defaults = %v %v", c.Server.CORSOrigins, c.Server.CORSAllowCredentials)
	}
}

func TestParseExplicitFalse(t *testing.T) {
	c, err := Parse([]byte("environment: x\nrate_limit:\n  enabled: false\nserver:\n  cors: false\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.RateLimit.Enabled || c.Server.CORS {
		t.Fatalf("explicit false was overwritten: %+v %+v", c.RateLimit, c.Server)
	}
}
