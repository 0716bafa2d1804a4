// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs the external WDF reader. The reader is either a
// container image (docker or podman) or an executable on the host PATH; in
// every case the source file is piped to its stdin and its document output
// is read from stdout.
package container

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pdiddy/wdfconv/pkg/types"
)

const (
	binDocker = "docker"
	binPodman = "podman"
	nameHost  = "host"
)

// Runtime provides reader operations: checking availability, verifying
// the reader, and running it.
type Runtime interface {
	// Name returns the runtime name ("docker", "podman", or "host").
	Name() string

	// Available reports whether the runtime is usable on this machine.
	Available() bool

	// ImageExists checks whether the named reader exists locally: an image
	// for container runtimes, an executable on PATH for the host runtime.
	ImageExists(image string) error

	// Run executes the reader, piping stdin and stdout.
	Run(image string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// RunPiped captures stderr so a failing reader's message ends up in the
// returned error.
func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, firstLine(msg))
		}
		return err
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// runtime implements Runtime for a specific container binary. Docker and
// Podman share the same logic; they differ only in binary name and the
// subcommand used to check image existence.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(image string, stdin io.Reader, stdout io.Writer) error {
	// --network none: the reader only ever needs stdin.
	args := []string{"run", "--rm", "-i", "--network", "none", image}
	if err := r.exec.RunPiped(r.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

// hostRuntime runs the reader as a local executable.
type hostRuntime struct {
	exec executor
}

func (h *hostRuntime) Name() string { return nameHost }

func (h *hostRuntime) Available() bool { return true }

func (h *hostRuntime) ImageExists(image string) error {
	if _, err := h.exec.LookPath(image); err != nil {
		return fmt.Errorf("reader %s not found on PATH: %w", image, err)
	}
	return nil
}

func (h *hostRuntime) Run(image string, stdin io.Reader, stdout io.Writer) error {
	if err := h.exec.RunPiped(image, nil, stdin, stdout); err != nil {
		return fmt.Errorf("running reader %s: %w", image, err)
	}
	return nil
}

var defaultExec = &osExecutor{}

// Detect returns the runtime for backend. BackendAuto tries docker first and
// falls back to podman. Returns an error if the requested runtime is not
// available.
func Detect(backend types.DecoderBackend) (Runtime, error) {
	return detect(defaultExec, backend)
}

func detect(exec executor, backend types.DecoderBackend) (Runtime, error) {
	switch backend {
	case types.BackendHost:
		return &hostRuntime{exec: exec}, nil
	case types.BackendDocker:
		return requireAvailable(newDockerRuntime(exec))
	case types.BackendPodman:
		return requireAvailable(newPodmanRuntime(exec))
	case types.BackendAuto, "":
		return detectRuntime(exec)
	default:
		return nil, fmt.Errorf("unknown decoder backend %q", backend)
	}
}

func requireAvailable(rt *runtime) (Runtime, error) {
	if !rt.Available() {
		return nil, fmt.Errorf("container runtime %s not found or not operational", rt.bin)
	}
	return rt, nil
}

func detectRuntime(exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
