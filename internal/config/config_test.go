package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseServiceEnv_AssemblesServiceFromTriple(t *testing.T) {
	environ := []string{
		"SERVICE_EXAMPLE_UPLOAD_URL=http://worker:9000/submit",
		"SERVICE_EXAMPLE_DOWNLOAD_URL=http://worker:9000/retrieve",
		"SERVICE_EXAMPLE_RUNS_PER_USER=2",
		"UNRELATED=value",
	}

	services := parseServiceEnv(environ)
	require.Len(t, services, 1)
	require.Equal(t, "example", services[0].Name)
	require.Equal(t, "http://worker:9000/submit", services[0].SubmitURL)
	require.Equal(t, "http://worker:9000/retrieve", services[0].RetrieveURL)
	require.Equal(t, 2, services[0].RunsPerUser)
}

func TestParseServiceEnv_DefaultsRunsPerUser(t *testing.T) {
	environ := []string{
		"SERVICE_EXAMPLE_UPLOAD_URL=http://worker:9000/submit",
		"SERVICE_EXAMPLE_DOWNLOAD_URL=http://worker:9000/retrieve",
	}

	services := parseServiceEnv(environ)
	require.Len(t, services, 1)
	require.Equal(t, defaultRunsPerUser, services[0].RunsPerUser)
}

func TestLoadOrchestrator_RequiresAtLeastOneService(t *testing.T) {
	_, err := LoadOrchestrator("")
	require.Error(t, err)
}
