package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/posture-check/internal/posture"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, posture.DefaultThresholds(), cfg.Thresholds)
	assert.Error(t, cfg.Validate(), "missing secret must fail validation")
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
pose:
  timeout: 3s
thresholds:
  frontal_low: 0.02
  frontal_mid: 0.05
  frontal_notable: 0.04
`), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("IMAGE_PROCESSOR_ADDR", "localhost:50051")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Pose.Timeout)
	assert.Equal(t, "localhost:50051", cfg.Pose.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 0.02, cfg.Thresholds.FrontalLow)
	assert.Equal(t, 0.04, cfg.Thresholds.FrontalNotable)
	assert.Equal(t, 0.07, cfg.Thresholds.SagittalMid)
	assert.NoError(t, cfg.Validate())
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_AUDIENCE=posture-app\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("JWT_AUDIENCE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "posture-app", cfg.Auth.JWTAudience)
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidateThresholds(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*posture.Thresholds)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*posture.Thresholds) {}},
		{name: "frontal not ascending", mutate: func(t *posture.Thresholds) { t.FrontalLow = 0.06 }, wantErr: true},
		{name: "sagittal zero", mutate: func(t *posture.Thresholds) { t.SagittalLow = 0 }, wantErr: true},
		{name: "negative notable", mutate: func(t *posture.Thresholds) { t.SagittalNotable = -1 }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th := posture.DefaultThresholds()
			tc.mutate(&th)
			err := ValidateThresholds(th)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
