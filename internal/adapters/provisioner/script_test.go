package provisioner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/pkg/config"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("provisioning scripts require a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// setup writes script into a temp dir and returns a provisioner for it
func setup(t *testing.T, script string, mode os.FileMode, interpreter string) (*ScriptProvisioner, string) {
	t.Helper()
	requireShell(t)

	base := t.TempDir()
	storeDir := filepath.Join(base, "clients")
	require.NoError(t, os.Mkdir(storeDir, 0755))

	scriptPath := filepath.Join(base, "server.sh")
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), mode))

	cfg := config.DefaultConfig()
	cfg.StoreDir = storeDir
	cfg.ProvisionScript = scriptPath
	cfg.ProvisionInterpreter = interpreter
	cfg.ProvisionTimeout = 10 * time.Second

	return NewScriptProvisioner(cfg), storeDir
}

func TestProvision_Success(t *testing.T) {
	p, storeDir := setup(t, `#!/bin/sh
printf 'client %s\n' "$1" > "$VPNADM_STORE_DIR/$1"
echo "generated $VPNADM_CLIENT"
`, 0644, "sh")

	result, err := p.Provision(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "generated alice\n", result.Output)
	assert.Positive(t, result.Duration)

	data, err := os.ReadFile(filepath.Join(storeDir, "alice"))
	require.NoError(t, err)
	assert.Equal(t, "client alice\n", string(data))
}

func TestProvision_DirectExecution(t *testing.T) {
	p, storeDir := setup(t, `#!/bin/sh
touch "$VPNADM_STORE_DIR/$1"
`, 0755, "")

	_, err := p.Provision(context.Background(), "direct")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(storeDir, "direct"))
}

func TestNewScriptProvisioner_RelativeScriptResolved(t *testing.T) {
	requireShell(t)

	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "server.sh"), []byte("#!/bin/sh\ntouch \"$VPNADM_STORE_DIR/$1\"\n"), 0755))
	storeDir := filepath.Join(base, "clients")
	require.NoError(t, os.Mkdir(storeDir, 0755))
	t.Chdir(base)

	cfg := config.DefaultConfig()
	cfg.StoreDir = storeDir
	cfg.ProvisionScript = "server.sh"
	cfg.ProvisionInterpreter = ""
	p := NewScriptProvisioner(cfg)

	assert.Equal(t, filepath.Join(base, "server.sh"), p.Script())
	require.NoError(t, p.Check())

	_, err := p.Provision(context.Background(), "local")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(storeDir, "local"))
}

func TestProvision_NonZeroExit(t *testing.T) {
	p, _ := setup(t, `#!/bin/sh
echo "building $1"
echo "easyrsa failed" >&2
exit 3
`, 0644, "sh")

	_, err := p.Provision(context.Background(), "bob")
	require.ErrorIs(t, err, domain.ErrProvisionFailed)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "bob", de.Name)
	assert.Equal(t, 3, de.ExitCode)
	assert.Contains(t, de.Output, "building bob")
	assert.Contains(t, de.Output, "easyrsa failed")
	assert.Equal(t, "exit status 3", de.Detail)
}

func TestProvision_NameIsASingleArgument(t *testing.T) {
	p, storeDir := setup(t, `#!/bin/sh
printf '%s|%s' "$#" "$1" > "$VPNADM_STORE_DIR/argv"
`, 0644, "sh")

	name := "x; touch pwned $(id)"
	_, err := p.Provision(context.Background(), name)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(storeDir, "argv"))
	require.NoError(t, err)
	assert.Equal(t, "1|"+name, string(data))
	assert.NoFileExists(t, filepath.Join(storeDir, "pwned"))
}

func TestProvision_Timeout(t *testing.T) {
	p, _ := setup(t, `#!/bin/sh
echo started
exec sleep 5
`, 0644, "sh")
	p.timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := p.Provision(context.Background(), "slow")
	require.ErrorIs(t, err, domain.ErrProvisionFailed)
	assert.Less(t, time.Since(start), 5*time.Second)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, -1, de.ExitCode)
	assert.True(t, strings.HasPrefix(de.Detail, "timed out"), de.Detail)
}

func TestProvision_Canceled(t *testing.T) {
	p, _ := setup(t, "#!/bin/sh\nexec sleep 5\n", 0644, "sh")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := p.Provision(ctx, "slow")
	require.ErrorIs(t, err, domain.ErrProvisionFailed)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "canceled", de.Detail)
}

func TestCheck(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name        string
		prepare     func(t *testing.T, dir string) string
		interpreter string
		wantErr     bool
	}{
		{
			name: "script with interpreter",
			prepare: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "s.sh")
				require.NoError(t, os.WriteFile(path, []byte("exit 0\n"), 0644))
				return path
			},
			interpreter: "sh",
		},
		{
			name: "executable script without interpreter",
			prepare: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "s.sh")
				require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
				return path
			},
		},
		{
			name: "missing script",
			prepare: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "absent.sh")
			},
			interpreter: "sh",
			wantErr:     true,
		},
		{
			name: "script is a directory",
			prepare: func(t *testing.T, dir string) string {
				return dir
			},
			interpreter: "sh",
			wantErr:     true,
		},
		{
			name: "non-executable script without interpreter",
			prepare: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "s.sh")
				require.NoError(t, os.WriteFile(path, []byte("exit 0\n"), 0644))
				return path
			},
			wantErr: true,
		},
		{
			name: "interpreter not on PATH",
			prepare: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "s.sh")
				require.NoError(t, os.WriteFile(path, []byte("exit 0\n"), 0644))
				return path
			},
			interpreter: "vpnadm-no-such-shell",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ScriptProvisioner{
				script:      tt.prepare(t, t.TempDir()),
				interpreter: tt.interpreter,
			}
			err := p.Check()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrProvisionUnavailable)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProvision_UnavailableNeverRuns(t *testing.T) {
	p := &ScriptProvisioner{
		script:      filepath.Join(t.TempDir(), "missing.sh"),
		interpreter: "sh",
	}

	_, err := p.Provision(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrProvisionUnavailable)
}

func TestCommand(t *testing.T) {
	p := &ScriptProvisioner{script: "/srv/server.sh", interpreter: "bash"}
	bin, args := p.command("alice")
	assert.Equal(t, "bash", bin)
	assert.Equal(t, []string{"/srv/server.sh", "alice"}, args)

	p.interpreter = ""
	bin, args = p.command("alice")
	assert.Equal(t, "/srv/server.sh", bin)
	assert.Equal(t, []string{"alice"}, args)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 10))
	assert.Equal(t, "...6789", tail("0123456789", 4))
}
