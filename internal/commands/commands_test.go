package commands_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hfnukal/morotasks/internal/commands"
	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/exitcode"
	"github.com/hfnukal/morotasks/internal/service"
	"github.com/hfnukal/morotasks/internal/testutil"
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expectSuccess(t *testing.T, stdout, stderr string, code int, wantOut string) {
	t.Helper()
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != wantOut {
		t.Errorf("expected %q, got %q", wantOut, stdout)
	}
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "Buy milk", false)
	svc.AddTask("2", "Pay rent", true)
	svc.AddTask("3", "Call mum", false)
	return svc
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)
	expectSuccess(t, stdout, stderr, code, "morotasks 0.1.0\n")
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

// Tests for list command
func TestListCommand_AllTasks(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, seeded(), nil, false)
	expectSuccess(t, stdout, stderr, code, "   1  [ ] Buy milk\n   2  [x] Pay rent\n   3  [ ] Call mum\n")
}

func TestListCommand_Filters(t *testing.T) {
	tests := []struct {
		filter string
		want   string
	}{
		{"all", "   1  [ ] Buy milk\n   2  [x] Pay rent\n   3  [ ] Call mum\n"},
		{"completed", "   1  [x] Pay rent\n"},
		{"incomplete", "   1  [ ] Buy milk\n   2  [ ] Call mum\n"},
		{"c", "   1  [x] Pay rent\n"},
		{"nc", "   1  [ ] Buy milk\n   2  [ ] Call mum\n"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			cmd := &commands.ListCmd{}
			cmd.SetFilter(tt.filter)
			stdout, stderr, code := runCommand(t, cmd, seeded(), nil, false)
			expectSuccess(t, stdout, stderr, code, tt.want)
		})
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetFilter("someday")
	_, stderr, code := runCommand(t, cmd, seeded(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid filter: someday") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, false)
	expectSuccess(t, stdout, stderr, code, "no tasks found\n")
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, true)
	expectSuccess(t, stdout, stderr, code, "")
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = errors.New("connection refused")

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: backend error: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "groceries"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	tasks := svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Text != "Buy groceries" {
		t.Errorf("expected text 'Buy groceries', got %q", tasks[0].Text)
	}
	if tasks[0].Completed {
		t.Error("new task should not be completed")
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, testutil.NewFakeService(), []string{"Buy", "milk"}, true)
	expectSuccess(t, stdout, stderr, code, "")
}

func TestAddCommand_NoText(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task text required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Calls) != 0 {
		t.Errorf("expected no backend calls, got %v", svc.Calls)
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"x"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_Success(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"2", "Pay", "the", "rent"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	got := svc.Tasks()[1]
	if got.Text != "Pay the rent" {
		t.Errorf("expected edited text, got %q", got.Text)
	}
	if !got.Completed {
		t.Error("edit must keep completion")
	}
}

func TestEditCommand_UsesFilteredNumbering(t *testing.T) {
	svc := seeded()

	cmd := &commands.EditCmd{}
	cmd.SetFilter("incomplete")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"2", "Call dad"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if got := svc.Tasks()[2].Text; got != "Call dad" {
		t.Errorf("expected task 3 edited, got %q", got)
	}
}

func TestEditCommand_MissingText(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.EditCmd{}, seeded(), []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task text required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for done and undone commands
func TestDoneCommand_Success(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"3"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if !svc.Tasks()[2].Completed {
		t.Error("expected task 3 completed")
	}
}

func TestUndoneCommand_Success(t *testing.T) {
	svc := seeded()

	cmd := &commands.UndoneCmd{}
	cmd.SetFilter("completed")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if svc.Tasks()[1].Completed {
		t.Error("expected task 2 reopened")
	}
}

func TestDoneCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no ref", nil, exitcode.UserError, "error: task number required\n"},
		{"bad ref", []string{"x"}, exitcode.UserError, "error: invalid task number: x\n"},
		{"zero", []string{"0"}, exitcode.UserError, "error: task number out of range: 0\n"},
		{"out of range", []string{"9"}, exitcode.UserError, "error: task number out of range: 9\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, seeded(), tt.args, false)
			if code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
		})
	}
}

func TestDoneCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.SetCompletedErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "boom") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	tasks := svc.Tasks()
	if len(tasks) != 2 || tasks[0].Text != "Pay rent" {
		t.Errorf("unexpected tasks after rm: %+v", tasks)
	}
}

func TestRmCommand_NotFoundOnServer(t *testing.T) {
	svc := seeded()
	svc.DeleteTaskErr = testutil.ErrNotFound

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: task not found") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for bulk commands
func TestDoneAllCommand(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.DoneAllCmd{}, svc, nil, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	for _, tk := range svc.Tasks() {
		if !tk.Completed {
			t.Errorf("expected %q completed", tk.Text)
		}
	}
}

func TestDoneAllCommand_ContinuesAfterFailure(t *testing.T) {
	svc := seeded()
	svc.SetCompletedErrs["1"] = errors.New("boom")

	_, _, code := runCommand(t, &commands.DoneAllCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !svc.Tasks()[2].Completed {
		t.Error("a single failure must not stop the other requests")
	}
}

func TestClearCommand(t *testing.T) {
	svc := seeded()
	svc.AddTask("4", "Old", true)

	stdout, stderr, code := runCommand(t, &commands.ClearCmd{}, svc, nil, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	tasks := svc.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 remaining tasks, got %d", len(tasks))
	}
	for _, tk := range tasks {
		if tk.Completed {
			t.Errorf("completed task %q not removed", tk.Text)
		}
	}
}

func TestClearCommand_NothingToClear(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "open", false)

	stdout, stderr, code := runCommand(t, &commands.ClearCmd{}, svc, nil, false)
	expectSuccess(t, stdout, stderr, code, "ok\n")

	if len(svc.Tasks()) != 1 {
		t.Error("open task must be kept")
	}
}

// Tests for serve command
func TestServeCommand_StopsOnCancel(t *testing.T) {
	cmd := &commands.ServeCmd{}
	cmd.SetAddr("127.0.0.1:0")

	var outBuf, errBuf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- cmd.Run(ctx, &config.Config{Dir: t.TempDir(), Quiet: true}, nil, nil, &outBuf, &errBuf)
	}()
	cancel()

	if code := <-done; code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errBuf.String())
	}
}

func TestServeCommand_BadAddr(t *testing.T) {
	cmd := &commands.ServeCmd{}
	cmd.SetAddr("not-an-address")

	_, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: could not listen on not-an-address") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for the registry
func TestDefaultRegistry_Commands(t *testing.T) {
	want := []string{"add", "clear", "done", "done-all", "edit", "help", "list", "login", "logout", "rm", "serve", "ui", "undone", "version"}

	all := commands.DefaultRegistry.All()
	if len(all) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(all))
	}
	for i, cmd := range all {
		if cmd.Name() != want[i] {
			t.Errorf("command %d: expected %q, got %q", i, want[i], cmd.Name())
		}
	}

	for _, alias := range []string{"ls", "create", "delete", "complete", "reopen", "tui"} {
		if _, ok := commands.DefaultRegistry.Find(alias); !ok {
			t.Errorf("alias %q not registered", alias)
		}
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.HelpCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&commands.HelpCmd{}); err == nil {
		t.Error("expected error for duplicate command")
	}
}
