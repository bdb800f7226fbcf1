package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInMemoryAndPaths(t *testing.T) {
	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"server": map[string]any{
				"host": "localhost",
				"port": 8080,
				"tls":  true,
			},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := cfg.Get("server:host"); got != "localhost" {
		t.Errorf("expected localhost, got %q", got)
	}
	// . 与 : 等价
	if got := cfg.Get("server.host"); got != "localhost" {
		t.Errorf("dot-delimited path should work, got %q", got)
	}
	if port, err := cfg.GetInt("server:port"); err != nil || port != 8080 {
		t.Errorf("expected 8080, got %d (%v)", port, err)
	}
	if tls, err := cfg.GetBool("server:tls"); err != nil || !tls {
		t.Errorf("expected true, got %v (%v)", tls, err)
	}
	if got := cfg.GetWithDefault("server:name", "api"); got != "api" {
		t.Errorf("expected the default, got %q", got)
	}

	section := cfg.GetSection("server")
	if got := section.Get("host"); got != "localhost" {
		t.Errorf("section lookup failed, got %q", got)
	}
}

func TestYamlFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	content := []byte("database:\n  driver: sqlite\n  pool:\n    max: 25\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigurationBuilder().AddYamlFile(path).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := cfg.Get("database:driver"); got != "sqlite" {
		t.Errorf("expected sqlite, got %q", got)
	}
	if max, err := cfg.GetInt("database:pool:max"); err != nil || max != 25 {
		t.Errorf("expected 25, got %d (%v)", max, err)
	}

	// 可选文件缺失不报错
	if _, err := NewConfigurationBuilder().AddYamlFile("/no/such/file.yaml", true).Build(); err != nil {
		t.Errorf("optional missing file must not fail: %v", err)
	}
	if _, err := NewConfigurationBuilder().AddYamlFile("/no/such/file.yaml").Build(); err == nil {
		t.Error("required missing file must fail")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("MYAPP_SERVER_PORT", "9090")
	t.Setenv("IGNORED_KEY", "x")

	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"server": map[string]any{"port": 8080, "host": "localhost"},
		}).
		AddEnvironmentVariables("MYAPP_").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 后注册的源覆盖先注册的
	if port, err := cfg.GetInt("server:port"); err != nil || port != 9090 {
		t.Errorf("expected the env override 9090, got %d (%v)", port, err)
	}
	if got := cfg.Get("server:host"); got != "localhost" {
		t.Errorf("untouched keys must survive the merge, got %q", got)
	}
	if got := cfg.Get("ignored:key"); got != "" {
		t.Errorf("keys without the prefix must be skipped, got %q", got)
	}
}

func TestDotEnvSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := []byte("APP_REDIS_ADDR=localhost:6379\nAPP_REDIS_DB=2\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigurationBuilder().AddDotEnv(path, "APP_").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := cfg.Get("redis:addr"); got != "localhost:6379" {
		t.Errorf("expected the dotenv value, got %q", got)
	}
	if db, err := cfg.GetInt("redis:db"); err != nil || db != 2 {
		t.Errorf("expected 2, got %d (%v)", db, err)
	}

	if _, err := NewConfigurationBuilder().AddDotEnv("/no/such/.env", "", true).Build(); err != nil {
		t.Errorf("optional missing dotenv must not fail: %v", err)
	}
}

type serverSettings struct {
	Host string
	Port int
}

func TestBindAndOptions(t *testing.T) {
	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"server": map[string]any{"host": "0.0.0.0", "port": 8081},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var settings serverSettings
	if err := cfg.Bind("server", &settings); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if settings.Host != "0.0.0.0" || settings.Port != 8081 {
		t.Errorf("unexpected binding: %+v", settings)
	}

	loaded, err := Load[serverSettings](cfg, "server")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != settings {
		t.Errorf("Load must agree with Bind, got %+v", loaded)
	}

	cache, err := NewOptionsCache[serverSettings](cfg, "server")
	if err != nil {
		t.Fatalf("NewOptionsCache failed: %v", err)
	}
	if cache.Get().Port != 8081 {
		t.Errorf("cache must hold the bound value, got %+v", cache.Get())
	}

	if _, err := NewOptionsCache[serverSettings](cfg, "missing"); err == nil {
		t.Error("binding a missing section must fail")
	}
}

func BenchmarkConfigGet(b *testing.B) {
	cfg, _ := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"server": map[string]any{"host": "localhost", "port": 8080},
		}).
		Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg.Get("server:host")
	}
}
