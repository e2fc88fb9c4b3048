package provisioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/ports"
	"github.com/kamal-hamza/vpnadm/pkg/config"
)

// maxOutput bounds how much command output is kept on failure
const maxOutput = 8 * 1024

// ScriptProvisioner implements the Provisioner port by running the
// configured provisioning script with the client name as its only argument
type ScriptProvisioner struct {
	script      string
	interpreter string
	timeout     time.Duration
	storeDir    string
}

// NewScriptProvisioner creates a provisioner from configuration
func NewScriptProvisioner(cfg *config.Config) *ScriptProvisioner {
	// Check and exec must agree on the file; a bare name would otherwise hit PATH
	script := cfg.ScriptPath()
	if abs, err := filepath.Abs(script); err == nil {
		script = abs
	}

	return &ScriptProvisioner{
		script:      script,
		interpreter: cfg.ProvisionInterpreter,
		timeout:     cfg.ProvisionTimeout,
		storeDir:    cfg.StorePath(),
	}
}

// Ensure it implements the interface
var _ ports.Provisioner = (*ScriptProvisioner)(nil)

// Provision runs the script and waits for it to exit.
// The name is passed as a single argv entry; no shell ever parses it.
func (p *ScriptProvisioner) Provision(ctx context.Context, name string) (*domain.ProvisionResult, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}

	runCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	bin, args := p.command(name)
	cmd := exec.CommandContext(runCtx, bin, args...)

	// Give the script the same view of the world the store has
	cmd.Env = append(os.Environ(),
		"VPNADM_CLIENT="+name,
		"VPNADM_STORE_DIR="+p.storeDir,
	)

	// Don't hang on grandchildren that keep the output pipe open after a kill
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	if err == nil {
		return &domain.ProvisionResult{
			Output:   string(output),
			Duration: duration,
		}, nil
	}

	return nil, p.classify(runCtx, name, err, output)
}

// Check verifies that the script (and interpreter, if any) can be launched
func (p *ScriptProvisioner) Check() error {
	info, err := os.Stat(p.script)
	if err != nil {
		return &domain.Error{
			Kind:   domain.KindProvisionUnavailable,
			Detail: fmt.Sprintf("provisioning script not accessible: %s", p.script),
			Err:    err,
		}
	}
	if !info.Mode().IsRegular() {
		return &domain.Error{
			Kind:   domain.KindProvisionUnavailable,
			Detail: fmt.Sprintf("provisioning script is not a regular file: %s", p.script),
		}
	}

	if p.interpreter == "" {
		if info.Mode().Perm()&0111 == 0 {
			return &domain.Error{
				Kind:   domain.KindProvisionUnavailable,
				Detail: fmt.Sprintf("provisioning script is not executable: %s", p.script),
			}
		}
		return nil
	}

	if _, err := exec.LookPath(p.interpreter); err != nil {
		return &domain.Error{
			Kind:   domain.KindProvisionUnavailable,
			Detail: fmt.Sprintf("interpreter not found: %s", p.interpreter),
			Err:    err,
		}
	}

	return nil
}

// Script returns the resolved script path
func (p *ScriptProvisioner) Script() string {
	return p.script
}

// Interpreter returns the configured interpreter, empty when the script runs directly
func (p *ScriptProvisioner) Interpreter() string {
	return p.interpreter
}

// command builds the argument vector
// interpreter set:   <interpreter> <script> <name>
// interpreter empty: <script> <name>
func (p *ScriptProvisioner) command(name string) (string, []string) {
	if p.interpreter != "" {
		return p.interpreter, []string{p.script, name}
	}
	return p.script, []string{name}
}

func (p *ScriptProvisioner) classify(runCtx context.Context, name string, err error, output []byte) error {
	out := tail(string(output), maxOutput)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return &domain.Error{
			Kind:     domain.KindProvisionFailed,
			Name:     name,
			ExitCode: -1,
			Output:   out,
			Detail:   fmt.Sprintf("timed out after %s", p.timeout),
		}
	}
	if errors.Is(runCtx.Err(), context.Canceled) {
		return &domain.Error{
			Kind:     domain.KindProvisionFailed,
			Name:     name,
			ExitCode: -1,
			Output:   out,
			Detail:   "canceled",
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &domain.Error{
			Kind:     domain.KindProvisionFailed,
			Name:     name,
			ExitCode: exitErr.ExitCode(),
			Output:   out,
			Detail:   exitErr.Error(),
		}
	}

	// Start failed: missing binary, permission denied, exec format error
	return &domain.Error{
		Kind: domain.KindProvisionUnavailable,
		Name: name,
		Err:  err,
	}
}

// tail keeps the last max bytes of s
func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
