package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mixtape/internal/shared"
	tu "github.com/desertthunder/mixtape/internal/testing"
	"github.com/urfave/cli/v3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRunner builds a runner over an in-memory database with a mock
// generator, capturing output in the returned buffer.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Generator: &tu.MockGenerator{},
		Logger:    shared.NewLogger(nil),
		Output:    output,
		DB:        setupTestDB(t),
	})
	return runner, output
}

// run executes a CLI invocation against the runner's registered commands.
func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	root := &cli.Command{
		Name:     "mixtape",
		Commands: runner.register(),
	}
	return root.Run(context.Background(), append([]string{"mixtape"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			generator := &tu.MockGenerator{}

			runner := NewRunner(RunnerOpts{
				Config:    config,
				Generator: generator,
				Logger:    logger,
				Output:    output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.generator != generator {
				t.Error("expected generator to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "generate", "verify", "playlist", "build", "tracks", "serve", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %q, got %q", i, name, commands[i].Name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "\"key\": \"value\"") {
				t.Errorf("expected indented JSON, got %q", output.String())
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if got := output.String(); got != "{\"key\":\"value\"}\n" {
				t.Errorf("expected compact JSON, got %q", got)
			}
		})

		t.Run("handles marshal error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			if err := runner.writeJSON(make(chan int), true); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s\n", "world"); err != nil {
				t.Fatalf("writePlain failed: %v", err)
			}
			if output.String() != "hello world\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("hello"); err == nil {
				t.Error("expected write error")
			}
		})
	})
}

func TestGenerateCommand(t *testing.T) {
	t.Run("prints candidates from prompt", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(t, runner, "generate", "a chill evening"); err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Generated Playlist") {
			t.Errorf("expected playlist title in output, got %q", got)
		}
		if !strings.Contains(got, "Test Artist - Test Track") {
			t.Errorf("expected candidate listing, got %q", got)
		}
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		err := run(t, runner, "generate")
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("saves to output file", func(t *testing.T) {
		runner, output := newTestRunner(t)
		path := filepath.Join(t.TempDir(), "playlist.json")

		if err := run(t, runner, "generate", "--output", path, "road trip"); err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected output file: %v", err)
		}
		if !strings.Contains(string(data), "Test Track") {
			t.Errorf("expected candidates in file, got %q", string(data))
		}
		if !strings.Contains(output.String(), "saved to") {
			t.Errorf("expected confirmation message, got %q", output.String())
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	writePayload := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "payload.json")
		payload := `{"name":"Evening Mix","description":"wind down","public":false,"tracks":[{"id":"sp1","artist":"M83","title":"Midnight City","duration_ms":243000}]}`
		if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
			t.Fatalf("failed to write payload: %v", err)
		}
		return path
	}

	playlistID := func(t *testing.T, output *bytes.Buffer) string {
		t.Helper()
		for _, line := range strings.Split(output.String(), "\n") {
			if id, ok := strings.CutPrefix(strings.TrimSpace(line), "ID: "); ok {
				return id
			}
		}
		t.Fatalf("no playlist id in output %q", output.String())
		return ""
	}

	t.Run("create and show roundtrip", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(t, runner, "playlist", "create", "--input", writePayload(t)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		id := playlistID(t, output)

		output.Reset()
		if err := run(t, runner, "playlist", "show", id); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		got := output.String()
		if !strings.Contains(got, "Evening Mix") || !strings.Contains(got, "Midnight City") {
			t.Errorf("unexpected show output %q", got)
		}
	})

	t.Run("create rejects malformed payload", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
			t.Fatalf("failed to write payload: %v", err)
		}

		if err := run(t, runner, "playlist", "create", "--input", path); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("list scopes to owner", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(t, runner, "playlist", "create", "--input", writePayload(t)); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "playlist", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Found 1 playlists") {
			t.Errorf("expected one playlist for default owner, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "playlist", "list", "--owner", "someone-else"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Found 0 playlists") {
			t.Errorf("expected no playlists for other owner, got %q", output.String())
		}
	})

	t.Run("delete removes draft", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(t, runner, "playlist", "create", "--input", writePayload(t)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		id := playlistID(t, output)

		if err := run(t, runner, "playlist", "delete", id); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := run(t, runner, "playlist", "show", id); err == nil {
			t.Fatal("expected show to fail after delete")
		}
	})

	t.Run("export writes text file", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(t, runner, "playlist", "create", "--input", writePayload(t)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		id := playlistID(t, output)
		path := filepath.Join(t.TempDir(), "export.txt")

		if err := run(t, runner, "playlist", "export", "--format", "text", "--output", path, id); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected export file: %v", err)
		}
		if !strings.Contains(string(data), "Midnight City") {
			t.Errorf("expected track listing in export, got %q", string(data))
		}
	})

	t.Run("export rejects unknown format", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(t, runner, "playlist", "create", "--input", writePayload(t)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		id := playlistID(t, output)

		if err := run(t, runner, "playlist", "export", "--format", "vinyl", id); err == nil {
			t.Fatal("expected validation error")
		}
	})
}
