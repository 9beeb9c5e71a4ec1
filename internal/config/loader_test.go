package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/sppb/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"SPPB_CONFIG",
	"SPPB_ADDR",
	"SPPB_DB_PATH",
	"SPPB_MODEL",
	"SPPB_LANGUAGE",
	"SPPB_STRICT_RULES",
	"SPPB_FORBIDDEN_TERMS",
	"SPPB_GENERATION_TIMEOUT_MS",
	"SPPB_OLLAMA_URL",
	"SPPB_LOG_LEVEL",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SPPB_ADDR", ":8080")
			_ = os.Setenv("SPPB_DB_PATH", ":memory:")
			_ = os.Setenv("SPPB_MODEL", "llama3:8b")
			_ = os.Setenv("SPPB_STRICT_RULES", "true")
			_ = os.Setenv("SPPB_FORBIDDEN_TERMS", "graph, KG ,,store")
			_ = os.Setenv("SPPB_GENERATION_TIMEOUT_MS", "5000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, ":memory:")
				convey.So(cfg.Model, convey.ShouldEqual, "llama3:8b")
				convey.So(cfg.StrictRules, convey.ShouldBeTrue)
				convey.So(cfg.ForbiddenTerms, convey.ShouldResemble, []string{"graph", "KG", "store"})
				convey.So(cfg.GenerationTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.Language, convey.ShouldEqual, "English")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
language: "Traditional Chinese"
opening_phrase: "您好"
audit_reports: false
forbidden_terms: ["知識圖譜", "KG"]
`)
			_ = os.Setenv("SPPB_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Language, convey.ShouldEqual, "Traditional Chinese")
				convey.So(cfg.OpeningPhrase, convey.ShouldEqual, "您好")
				convey.So(cfg.AuditReports, convey.ShouldBeFalse)
				convey.So(cfg.ForbiddenTerms, convey.ShouldResemble, []string{"知識圖譜", "KG"})
			})

			convey.Convey("And environment variables take precedence", func() {
				_ = os.Setenv("SPPB_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Language, convey.ShouldEqual, "Traditional Chinese")
			})
		})

		convey.Convey("When the file is passed as an option", func() {
			fromEnv := writeConfigFile(t, `addr: ":1111"`)
			fromOption := writeConfigFile(t, `addr: ":2222"`)
			_ = os.Setenv("SPPB_CONFIG", fromEnv)

			cfg, err := config.Load(ctx, config.WithFile(fromOption))

			convey.Convey("Then it wins over SPPB_CONFIG without touching the environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":2222")
				convey.So(os.Getenv("SPPB_CONFIG"), convey.ShouldEqual, fromEnv)
			})

			convey.Convey("And an empty option falls back to SPPB_CONFIG", func() {
				cfg, err := config.Load(ctx, config.WithFile(""))
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":1111")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("SPPB_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is not valid YAML", func() {
			_ = os.Setenv("SPPB_CONFIG", writeConfigFile(t, "addr: [unclosed"))
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a loaded value is invalid", func() {
			_ = os.Setenv("SPPB_OLLAMA_URL", "ftp://example")
			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
