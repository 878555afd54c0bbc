package conf_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/sqlbench/conf"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestInitConfigDefaults(t *testing.T) {
	config, err := conf.InitConfig("sqlbench", []string{})
	require.NoError(t, err)

	assert.Equal(t, conf.DefaultConfig, *config)
}

func TestInitConfigFlagsOverrideDefaults(t *testing.T) {
	config, err := conf.InitConfig("sqlbench", []string{
		"-warmup", "5",
		"-runs", "20",
		"-timeout", "45s",
		"-sequential",
		"-seed", "7",
		"-provision", "external",
		"-host", "db.internal",
		"-port", "3307",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, config.Warmup)
	assert.Equal(t, 20, config.Measured)
	assert.Equal(t, conf.Duration(45*time.Second), config.Timeout)
	assert.True(t, config.Sequential)
	assert.Equal(t, int64(7), config.Seed)
	assert.Equal(t, conf.ProvisionExternal, config.Provision)
	assert.Equal(t, "db.internal", config.MySQL.Host)
	assert.Equal(t, 3307, config.MySQL.Port)

	// untouched fields keep their defaults
	assert.Equal(t, conf.DefaultConfig.Image, config.Image)
	assert.Equal(t, conf.DefaultConfig.ParamSets, config.ParamSets)
}

func TestInitConfigReadsConfigFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"warmup": 2,
		"measured": 4,
		"timeout": "10s",
		"param_sets": [
			{"persons": 100, "records": 10000},
			{"persons": 1000, "records": 50000}
		],
		"mysql": {"host": "filehost", "port": 3310, "user": "u", "password": "p", "db": "d"}
	}`)

	config, err := conf.InitConfig("sqlbench", []string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, 2, config.Warmup)
	assert.Equal(t, 4, config.Measured)
	assert.Equal(t, conf.Duration(10*time.Second), config.Timeout)
	assert.Equal(t, "filehost", config.MySQL.Host)

	require.Len(t, config.ParamSets, 2)
	assert.Equal(t, conf.ParamSet{Persons: 1000, Records: 50000}, config.ParamSets[1])
}

func TestInitConfigFlagsOverrideConfigFile(t *testing.T) {
	path := writeConfigFile(t, `{"warmup": 2, "measured": 4}`)

	config, err := conf.InitConfig("sqlbench", []string{"-config", path, "-runs", "30"})
	require.NoError(t, err)

	assert.Equal(t, 2, config.Warmup)
	assert.Equal(t, 30, config.Measured)
}

func TestInitConfigDatasetFlagsCollapseParamSets(t *testing.T) {
	path := writeConfigFile(t, `{
		"param_sets": [
			{"persons": 100, "records": 10000},
			{"persons": 1000, "records": 50000}
		]
	}`)

	config, err := conf.InitConfig("sqlbench", []string{"-config", path, "-persons", "250"})
	require.NoError(t, err)

	// an explicit dataset flag runs a single parameter set; the records
	// value comes from the first configured set
	require.Len(t, config.ParamSets, 1)
	assert.Equal(t, conf.ParamSet{Persons: 250, Records: 10000}, config.ParamSets[0])
}

func TestInitConfigRejectsInvalidValues(t *testing.T) {
	tt := []struct {
		name string
		args []string
	}{
		{"zero runs", []string{"-runs", "0"}},
		{"negative warmup", []string{"-warmup", "-1"}},
		{"unknown provision mode", []string{"-provision", "kubernetes"}},
		{"zero persons", []string{"-persons", "0"}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := conf.InitConfig("sqlbench", tc.args)
			require.Error(t, err)
		})
	}
}

func TestDurationJSON(t *testing.T) {
	var config conf.Config

	path := writeConfigFile(t, `{"timeout": "1m30s"}`)
	require.NoError(t, conf.ReadConfig(path, &config))
	assert.Equal(t, conf.Duration(90*time.Second), config.Timeout)

	bad := writeConfigFile(t, `{"timeout": "ninety"}`)
	require.Error(t, conf.ReadConfig(bad, &config))
}
