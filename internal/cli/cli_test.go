package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"focussync/internal/model"
)

type testEnv struct {
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{configPath: filepath.Join(t.TempDir(), "focus.yaml")}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("focus %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestOfflineTrackingLifecycle(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "--offline", "track", "writing", "docs")
	if !strings.Contains(out, "Time tracking: active work") {
		t.Fatalf("unexpected track output:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "status")
	if !strings.Contains(out, "writing docs") {
		t.Fatalf("expected the open log to survive the restart:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "pause")
	if !strings.Contains(out, "Time tracking: paused") {
		t.Fatalf("unexpected pause output:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "resume")
	if !strings.Contains(out, "Time tracking: active") {
		t.Fatalf("unexpected resume output:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "stop")
	if !strings.Contains(out, "Time tracking: off") {
		t.Fatalf("unexpected stop output:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "history")
	if !strings.Contains(out, "completed") || !strings.Contains(out, "writing docs") {
		t.Fatalf("unexpected history:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "stats")
	if !strings.Contains(out, "over 1 sessions") {
		t.Fatalf("unexpected stats:\n%s", out)
	}
}

func TestOfflineTrackRejectsSecondSession(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "--offline", "track", "first")

	if _, err := env.run(t, "--offline", "track", "second"); err == nil {
		t.Fatal("expected conflict while a session is open")
	}

	out := env.mustRun(t, "--offline", "cancel")
	if !strings.Contains(out, "Time tracking: off") {
		t.Fatalf("unexpected cancel output:\n%s", out)
	}
	env.mustRun(t, "--offline", "track", "second")
}

func TestSynchronizedStartAndStop(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "--offline", "start", "Write report", "--task", "task-42")
	if !strings.Contains(out, "Write report") {
		t.Fatalf("expected the context title in the label:\n%s", out)
	}
	if !strings.Contains(out, "running") || !strings.Contains(out, "Time tracking: active") {
		t.Fatalf("expected both timers running:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "stop")
	if !strings.Contains(out, "idle") || !strings.Contains(out, "Time tracking: off") {
		t.Fatalf("expected both timers stopped:\n%s", out)
	}
	if !strings.Contains(out, "No active timer") {
		t.Fatalf("expected idle label after stop:\n%s", out)
	}
}

func TestPauseAllResumesBothTimersInLaterInvocation(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "--offline", "start", "Write report")
	out := env.mustRun(t, "--offline", "pause")
	if !strings.Contains(out, "idle") || !strings.Contains(out, "Time tracking: paused") {
		t.Fatalf("expected both timers paused:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "resume")
	if !strings.Contains(out, "running") || !strings.Contains(out, "Time tracking: active") {
		t.Fatalf("expected both timers resumed:\n%s", out)
	}
	if !strings.Contains(out, "Synchronized: Write report") {
		t.Fatalf("expected a synchronized session again:\n%s", out)
	}
}

func TestPomodoroPersistsAcrossInvocations(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "--offline", "pomodoro", "start")

	out := env.mustRun(t, "--offline", "status")
	if !strings.Contains(out, "Pomodoro: Focus") || !strings.Contains(out, "running") {
		t.Fatalf("expected restored running pomodoro:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "pomodoro", "reset")
	if !strings.Contains(out, "Focus 25:00 idle") {
		t.Fatalf("unexpected reset output:\n%s", out)
	}
}

func TestPomodoroSettings(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "--offline", "pomodoro", "settings", "--focus", "50", "--sessions", "2")
	if !strings.Contains(out, "Focus:       50:00") {
		t.Fatalf("unexpected settings output:\n%s", out)
	}
	if !strings.Contains(out, "every 2 focus sessions") {
		t.Fatalf("unexpected settings output:\n%s", out)
	}

	out = env.mustRun(t, "--offline", "pomodoro", "settings")
	if !strings.Contains(out, "Focus:       50:00") {
		t.Fatalf("expected settings to persist:\n%s", out)
	}
}

func TestPomodoroCompleteRequiresFinishedPhase(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "--offline", "pomodoro", "complete"); err == nil {
		t.Fatal("expected error while the phase still has time left")
	}
}

func TestOnlineCommandsRequireLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "status")
	if !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn, got %v", err)
	}
}

func TestWhoamiOffline(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "--offline", "whoami")
	if !strings.Contains(out, "Offline as local") {
		t.Fatalf("unexpected whoami output:\n%s", out)
	}
}

func TestLoginRejectedOffline(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "--offline", "login", "--email", "a@example.com", "--password", "secret123"); err == nil {
		t.Fatal("expected login to be refused in offline mode")
	}
}

func TestSessionContextFromFlags(t *testing.T) {
	cases := []struct {
		name    string
		flags   startFlags
		args    []string
		want    model.SessionContext
		wantErr bool
	}{
		{
			name: "custom title",
			args: []string{"Deep", "work"},
			want: model.SessionContext{Kind: model.ContextCustom, Title: "Deep work"},
		},
		{
			name:  "project without title",
			flags: startFlags{project: "p1"},
			want:  model.SessionContext{Kind: model.ContextProject, ID: "p1", Title: "project p1"},
		},
		{
			name:  "event with title",
			flags: startFlags{event: "e1"},
			args:  []string{"Standup"},
			want:  model.SessionContext{Kind: model.ContextEvent, ID: "e1", Title: "Standup"},
		},
		{
			name:    "two associations",
			flags:   startFlags{task: "t1", event: "e1"},
			args:    []string{"x"},
			wantErr: true,
		},
		{
			name:    "custom with association",
			flags:   startFlags{task: "t1", custom: true},
			wantErr: true,
		},
		{
			name:    "nothing",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.flags.sessionContext(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
