// Package config loads orchestrator and worker configuration from a TOML
// file (optional), then environment variables (which always win), matching
// the layered config convention used elsewhere in this stack.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ServiceConfig is one entry of the orchestrator's Service Registry.
type ServiceConfig struct {
	Name        string `toml:"name"`
	SubmitURL   string `toml:"submit_url"`
	RetrieveURL string `toml:"retrieve_url"`
	RunsPerUser int    `toml:"runs_per_user"`
}

// OrchestratorConfig holds every environment-variable-configurable setting
// named in SPEC_FULL.md §6.
type OrchestratorConfig struct {
	Port     int             `toml:"port"`
	DBPath   string          `toml:"db_path"`
	DataPath string          `toml:"data_path"`
	MaxAge   int             `toml:"max_age"`
	Services []ServiceConfig `toml:"services"`
	LogLevel string          `toml:"log_level"`
}

// WorkerConfig holds the worker role's settings.
type WorkerConfig struct {
	Port           int    `toml:"port"`
	RunnerTimeout  int    `toml:"runner_timeout_seconds"`
	LogLevel       string `toml:"log_level"`
}

const (
	defaultOrchestratorPort = 5000
	defaultWorkerPort       = 9000
	defaultDBPath           = "./db.sqlite"
	defaultDataPath         = "./data"
	defaultMaxAgeSeconds    = 172800
	defaultRunsPerUser      = 5
	// DefaultRunnerTimeoutSeconds is grounded on the teacher's
	// hooks.DefaultTimeout = 5 * time.Minute (see DESIGN.md Open Question 2).
	DefaultRunnerTimeoutSeconds = 300
)

// LoadOrchestrator applies, in order: built-in defaults, an optional TOML
// file at path (ignored if empty), then environment variables. At least one
// service must resolve or an error is returned.
func LoadOrchestrator(path string) (OrchestratorConfig, error) {
	cfg := OrchestratorConfig{
		Port:     defaultOrchestratorPort,
		DBPath:   defaultDBPath,
		DataPath: defaultDataPath,
		MaxAge:   defaultMaxAgeSeconds,
		LogLevel: "info",
	}

	if path != "" {
		if err := loadTOML(path, &cfg); err != nil {
			return cfg, err
		}
	}

	applyOrchestratorEnv(&cfg)

	if len(cfg.Services) == 0 {
		return cfg, fmt.Errorf("config: at least one service must be configured")
	}
	return cfg, nil
}

// LoadWorker applies built-in defaults, an optional TOML file, then env vars.
func LoadWorker(path string) (WorkerConfig, error) {
	cfg := WorkerConfig{
		Port:          defaultWorkerPort,
		RunnerTimeout: DefaultRunnerTimeoutSeconds,
		LogLevel:      "info",
	}

	if path != "" {
		if err := loadTOML(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("RUNNER_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RunnerTimeout = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

func loadTOML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func applyOrchestratorEnv(cfg *OrchestratorConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("MAX_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAge = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	envServices := parseServiceEnv(os.Environ())
	if len(envServices) > 0 {
		cfg.Services = mergeServices(cfg.Services, envServices)
	}
}

// parseServiceEnv scans the process environment for SERVICE_{NAME}_UPLOAD_URL
// / SERVICE_{NAME}_DOWNLOAD_URL / SERVICE_{NAME}_RUNS_PER_USER triples and
// assembles one ServiceConfig per distinct NAME.
func parseServiceEnv(environ []string) []ServiceConfig {
	upload := map[string]string{}
	download := map[string]string{}
	runsPerUser := map[string]int{}
	order := []string{}
	seen := map[string]bool{}

	for _, kv := range environ {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := parts[0], parts[1]
		switch {
		case strings.HasPrefix(key, "SERVICE_") && strings.HasSuffix(key, "_UPLOAD_URL"):
			name := strings.TrimSuffix(strings.TrimPrefix(key, "SERVICE_"), "_UPLOAD_URL")
			upload[name] = val
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		case strings.HasPrefix(key, "SERVICE_") && strings.HasSuffix(key, "_DOWNLOAD_URL"):
			name := strings.TrimSuffix(strings.TrimPrefix(key, "SERVICE_"), "_DOWNLOAD_URL")
			download[name] = val
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		case strings.HasPrefix(key, "SERVICE_") && strings.HasSuffix(key, "_RUNS_PER_USER"):
			name := strings.TrimSuffix(strings.TrimPrefix(key, "SERVICE_"), "_RUNS_PER_USER")
			if n, err := strconv.Atoi(val); err == nil {
				runsPerUser[name] = n
			}
		}
	}

	var out []ServiceConfig
	for _, name := range order {
		runs := runsPerUser[name]
		if runs <= 0 {
			runs = defaultRunsPerUser
		}
		out = append(out, ServiceConfig{
			Name:        strings.ToLower(name),
			SubmitURL:   upload[name],
			RetrieveURL: download[name],
			RunsPerUser: runs,
		})
	}
	return out
}

func mergeServices(base []ServiceConfig, env []ServiceConfig) []ServiceConfig {
	byName := map[string]ServiceConfig{}
	for _, s := range base {
		byName[s.Name] = s
	}
	for _, s := range env {
		byName[s.Name] = s
	}
	out := make([]ServiceConfig, 0, len(byName))
	for _, s := range byName {
		out = append(out, s)
	}
	return out
}
