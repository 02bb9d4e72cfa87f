package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// ForgeAdapter runs forge scripts under a pty so forge keeps its colored output
type ForgeAdapter struct {
	log         *slog.Logger
	projectRoot string
	privateKey  string
	binary      string
}

// NewForgeAdapter creates a new forge script runner
func NewForgeAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *ForgeAdapter {
	return &ForgeAdapter{
		log:         log.With("component", "ForgeAdapter"),
		projectRoot: cfg.ProjectRoot,
		privateKey:  cfg.PrivateKey,
		binary:      "forge",
	}
}

// RunScript executes `forge script` and returns its combined output. A
// non-zero exit is returned as an error together with the output.
func (f *ForgeAdapter) RunScript(ctx context.Context, cfg usecase.ScriptRunConfig) (*usecase.ScriptRunResult, error) {
	args := f.buildArgs(cfg)
	env := f.buildEnv(cfg)

	f.log.Debug("running forge script", "args", args, "env", redact(env))
	start := time.Now()

	cmd := exec.CommandContext(ctx, f.binary, args...)
	cmd.Dir = f.projectRoot
	cmd.Env = append(os.Environ(), env...)

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	var output bytes.Buffer
	var sink io.Writer = &output
	if cfg.Debug {
		sink = io.MultiWriter(&output, os.Stderr)
	}

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		// Reading a pty whose child has exited ends with EIO
		_, _ = io.Copy(sink, ptyFile)
	}()

	cmdErr := cmd.Wait()
	<-copied

	result := &usecase.ScriptRunResult{Output: output.String()}
	f.log.Debug("forge script finished", "script", cfg.Script, "duration", time.Since(start), "error", cmdErr)

	if cmdErr != nil {
		var exitErr *exec.ExitError
		if errors.As(cmdErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("forge script %s: %w", cfg.Script, ctxErr)
		}
		return result, &ScriptError{Script: cfg.Script, ExitCode: result.ExitCode, Output: result.Output}
	}

	return result, nil
}

// buildArgs builds the forge script command arguments
func (f *ForgeAdapter) buildArgs(cfg usecase.ScriptRunConfig) []string {
	args := []string{"script", cfg.Script, "--broadcast"}
	if cfg.RPCURL != "" {
		args = append(args, "--rpc-url", cfg.RPCURL)
	}
	if cfg.Debug {
		args = append(args, "-vvvv")
	}
	return args
}

// buildEnv builds the environment, sorted for stable logs
func (f *ForgeAdapter) buildEnv(cfg usecase.ScriptRunConfig) []string {
	env := make(map[string]string, len(cfg.Env)+1)
	if f.privateKey != "" {
		env["PRIVATE_KEY"] = f.privateKey
	}
	for k, v := range cfg.Env {
		env[k] = v
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func redact(env []string) []string {
	out := make([]string, len(env))
	for i, kv := range env {
		if strings.HasPrefix(kv, "PRIVATE_KEY=") {
			kv = "PRIVATE_KEY=***"
		}
		out[i] = kv
	}
	return out
}

// ScriptError is a forge script that exited non-zero
type ScriptError struct {
	Script   string
	ExitCode int
	Output   string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("forge script %s exited with code %d\n%s", e.Script, e.ExitCode, tail(e.Output, 20))
}

// Ensure ForgeAdapter implements ScriptRunner
var _ usecase.ScriptRunner = (*ForgeAdapter)(nil)
