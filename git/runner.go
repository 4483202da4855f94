package git

import (
	"bytes"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner executes external commands.
// The workDir may be empty to use the current directory.
type CommandRunner interface {
	Run(workDir, command string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and returns its trimmed stdout.
// A failure returns a *CommandError carrying the trimmed stderr.
func (r *ExecRunner) Run(workDir, command string, args ...string) (string, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(stdout.String()), &CommandError{
			Command: command,
			Args:    args,
			Output:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CommandError describes a failed command.
type CommandError struct {
	Command string
	Args    []string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// MockResponse is a canned result for MockRunner.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records one invocation of MockRunner.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner is a CommandRunner for tests.
//
// Responses are matched in order: exact "command arg..." key, then the
// bare command name, then the wildcard set by OnAnyCommand, then
// DefaultResponse.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

const mockWildcard = "*"

// MockExpectation sets the response for a registered command.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand registers a response for the exact command and arguments.
func (m *MockRunner) OnCommand(command string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: mockKey(command, args)}
}

// OnAnyCommand registers a response for every unmatched command.
func (m *MockRunner) OnAnyCommand() *MockExpectation {
	return &MockExpectation{runner: m, key: mockWildcard}
}

// Return sets the output and error for the expectation.
func (e *MockExpectation) Return(stdout string, err error) {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = MockResponse{Stdout: stdout, Err: err}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(workDir, command string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{WorkDir: workDir, Command: command, Args: args})

	for _, key := range []string{mockKey(command, args), command, mockWildcard} {
		if resp, ok := m.Responses[key]; ok {
			return resp.Stdout, resp.Err
		}
	}
	return m.DefaultResponse.Stdout, m.DefaultResponse.Err
}

// WasCalled reports whether a call started with the given command and args.
func (m *MockRunner) WasCalled(command string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.Calls {
		if call.Command != command {
			continue
		}
		if len(args) == 0 || argsMatch(call.Args, args) {
			return true
		}
	}
	return false
}

// CallCount returns how many times command was run.
func (m *MockRunner) CallCount(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, call := range m.Calls {
		if call.Command == command {
			n++
		}
	}
	return n
}

func mockKey(command string, args []string) string {
	return strings.TrimSpace(command + " " + strings.Join(args, " "))
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}
