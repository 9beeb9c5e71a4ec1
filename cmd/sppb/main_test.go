package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/sppb/internal/config"
	"github.com/okian/sppb/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

// execute runs a fresh command tree against a temp rule store.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "rules.db")
	t.Setenv(config.EnvFile, "")
	t.Setenv("SPPB_DB_PATH", dbPath)
	t.Setenv("SPPB_SEED_RULES", "false")
	t.Setenv("SPPB_STRICT_RULES", "false")
	return dbPath
}

func ollamaStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "gemma3:1b",
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRulesValidateCommand(t *testing.T) {
	Convey("Given the rules validate command", t, func() {
		isolate(t)

		Convey("When the store holds the built-in rubric", func() {
			_, _, err := execute(t, "", "rules", "seed")
			So(err, ShouldBeNil)
			out, _, err := execute(t, "", "rules", "validate")

			Convey("Then it reports the tables as clean", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "max composite: 12")
				So(out, ShouldContainSubstring, "ok")
			})
		})

		Convey("When a rule file leaves an interpretation gap", func() {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			So(os.WriteFile(path, []byte(`
scores:
  - {test: side_by_side, min_time: 0, max_time: .inf, score: 1, meaning: held}
  - {test: semi_tandem, min_time: 0, max_time: .inf, score: 1, meaning: held}
  - {test: tandem, min_time: 0, max_time: .inf, score: 2, meaning: held}
  - {test: gait_speed, min_time: 0, max_time: .inf, score: 4, meaning: walked}
  - {test: chair_rise, min_time: 0, max_time: .inf, score: 4, meaning: rose}
interpretations:
  - {min_score: 0, max_score: 6, meaning: low}
`), 0o600), ShouldBeNil)
			out, _, err := execute(t, "", "rules", "validate", "--file", path)

			Convey("Then the gap is printed and the command fails", func() {
				So(errors.Is(err, rules.ErrCoverage), ShouldBeTrue)
				So(out, ShouldContainSubstring, "scores 7..12 are not covered")
			})
		})

		Convey("When the rule file does not exist", func() {
			_, _, err := execute(t, "", "rules", "validate", "-f", filepath.Join(t.TempDir(), "none.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRulesSeedCommand(t *testing.T) {
	Convey("Given an empty rule store", t, func() {
		dbPath := isolate(t)

		Convey("When seeding the built-in rubric", func() {
			out, _, err := execute(t, "", "rules", "seed")

			Convey("Then the counts are reported", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "seeded "+dbPath)
				So(out, ShouldContainSubstring, "4 interpretation rules")
				So(out, ShouldContainSubstring, "0 issue(s)")
			})
		})

		Convey("When --db points elsewhere", func() {
			other := filepath.Join(t.TempDir(), "other.db")
			out, _, err := execute(t, "", "--db", other, "rules", "seed")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "seeded "+other)
		})
	})
}

func TestBatchCommand(t *testing.T) {
	Convey("Given a batch file and a generation backend", t, func() {
		isolate(t)
		srv := ollamaStub(t, "Hello. Your total is 11 points.")
		t.Setenv("SPPB_OLLAMA_URL", srv.URL)

		dir := t.TempDir()
		in := filepath.Join(dir, "cases.csv")
		outPath := filepath.Join(dir, "results.csv")
		So(os.WriteFile(in, []byte(
			"10,10,10,4.5,12,,,,,,11\n"+
				"10,10,10,4.5,12,,,,,,9\n"+
				"x,10,10,4.5,12,,,,,,11\n",
		), 0o600), ShouldBeNil)

		Convey("When the batch runs", func() {
			_, stderr, err := execute(t, "", "batch", "--in", in, "--out", outPath)
			So(err, ShouldBeNil)
			data, readErr := os.ReadFile(outPath)
			So(readErr, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")

			Convey("Then every row is verified in input order", func() {
				So(lines, ShouldHaveLength, 3)
				So(lines[0], ShouldContainSubstring, ",11,PASS,,Hello. Your total is 11 points.")
				So(lines[1], ShouldContainSubstring, ",11,FAIL,")
				So(lines[2], ShouldContainSubstring, ",0,ERROR,")
				So(stderr, ShouldContainSubstring, "rows=3 pass=1 fail=1 error=1")
			})
		})

		Convey("When the batch reads stdin and writes stdout", func() {
			out, _, err := execute(t, "10,10,10,4.5,12,,,,,,11\n", "batch")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "PASS")
		})
	})
}

func TestAssessCommand(t *testing.T) {
	Convey("Given the interactive assessment", t, func() {
		isolate(t)
		srv := ollamaStub(t, "Hello. This is your report.")
		t.Setenv("SPPB_OLLAMA_URL", srv.URL)

		Convey("When five durations are entered", func() {
			out, _, err := execute(t, "10\n10\n10\n4.5\n12\n", "assess")

			Convey("Then scores and the report are printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "SPPB total score: 11")
				So(out, ShouldContainSubstring, "Hello. This is your report.")
			})
		})
	})
}

func TestRootConfig(t *testing.T) {
	Convey("Given an invalid log level", t, func() {
		isolate(t)
		_, _, err := execute(t, "", "--log-level", "loud", "rules", "seed")

		Convey("Then the command refuses to run", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a config file", t, func() {
		isolate(t)
		path := filepath.Join(t.TempDir(), "sppb.yaml")
		dbPath := filepath.Join(t.TempDir(), "from-file.db")
		So(os.WriteFile(path, []byte("db_path: "+dbPath+"\n"), 0o600), ShouldBeNil)
		t.Setenv("SPPB_DB_PATH", "")
		os.Unsetenv("SPPB_DB_PATH")

		out, _, err := execute(t, "", "--config", path, "rules", "seed")

		Convey("Then its settings are used", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "seeded "+dbPath)
		})

		Convey("Then the process environment is left alone", func() {
			So(os.Getenv(config.EnvFile), ShouldBeEmpty)
		})
	})
}
