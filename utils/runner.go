package utils

import (
	"bytes"
	"os/exec"
)

// Runner executes an external tool. Commands are built as plain argument
// lists so their contracts stay testable without invoking a real binary.
type Runner interface {
	// Run executes the command and returns its captured stderr. A non-nil
	// error means the process failed to start or exited non-zero.
	Run(name string, args ...string) (stderr []byte, err error)

	// Output executes the command and returns its captured stdout, used
	// for probe calls.
	Output(name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

func (ExecRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}
