package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/xraysync/internal/config"
	"github.com/fjglira/xraysync/internal/domain"
)

var _ = Describe("Config", func() {
	Describe("Load", func() {
		It("should return defaults for an empty path", func() {
			cfg, err := config.Load("")
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg).To(Equal(config.DefaultConfig()))
		})

		It("should load minimal config", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "minimal.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Project.Key).To(Equal("QA"))
			Expect(cfg.Xray.ImportURL).To(Equal(config.DefaultImportURL))
			Expect(cfg.Upload.Workers).To(Equal(5))
		})

		It("should load full YAML config", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.CSV.SeparatorRune()).To(Equal(';'))
			Expect(cfg.Xray.Timeout).To(Equal(30 * time.Second))
			Expect(cfg.Upload.Mode).To(Equal(config.ModeParallel))
			Expect(cfg.Upload.Workers).To(Equal(3))
			Expect(cfg.Upload.BaseDelay).To(Equal(2 * time.Second))
			Expect(cfg.Upload.Backoff).To(Equal(1.5))
			Expect(cfg.Upload.Cooldown).To(Equal(500 * time.Millisecond))
			Expect(cfg.Paths.ExcelDir()).To(Equal(filepath.Join("/srv/xray", "excel")))
			Expect(cfg.Paths.JSONDir()).To(Equal("/var/lib/xray/json"))
		})

		It("should load TOML config by extension", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "full.toml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Project.Key).To(Equal("QA"))
			Expect(cfg.Upload.Workers).To(Equal(2))
			Expect(cfg.Upload.BaseDelay).To(Equal(3 * time.Second))
			Expect(cfg.Upload.Cooldown).To(Equal(250 * time.Millisecond))
			Expect(cfg.Paths.CSVDir()).To(Equal("/srv/xray"))
			Expect(cfg.Paths.JSONDir()).To(Equal(filepath.Join("/srv/xray", "out")))
			Expect(cfg.Xray.Timeout).To(Equal(60 * time.Second))
		})

		It("should return error for nonexistent file", func() {
			_, err := config.Load("nonexistent.yaml")
			Expect(err).To(HaveOccurred())
			Expect(domain.IsPhase(err, domain.PhaseConfig)).To(BeTrue())
		})

		It("should return error for invalid YAML", func() {
			tmpFile := filepath.Join(GinkgoT().TempDir(), "invalid.yaml")
			Expect(os.WriteFile(tmpFile, []byte("{{invalid yaml}}"), 0644)).To(Succeed())

			_, err := config.Load(tmpFile)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Environment overlay", func() {
		envFile := filepath.Join("..", "..", "testdata", "configs", "test.env")

		It("should read dotenv values", func() {
			vars, err := config.ReadEnvFile(envFile)
			Expect(err).ToNot(HaveOccurred())
			Expect(vars).To(HaveKeyWithValue("CLIENT_ID", "dotenv-id"))
		})

		It("should treat a missing dotenv file as empty", func() {
			vars, err := config.ReadEnvFile(filepath.Join(GinkgoT().TempDir(), ".env"))
			Expect(err).ToNot(HaveOccurred())
			Expect(vars).To(BeEmpty())
		})

		It("should overlay non-empty environment values", func() {
			cfg := config.DefaultConfig()
			cfg.Xray.ClientID = "from-file"
			env := map[string]string{
				"CLIENT_ID":     "from-env",
				"CSV_SEPARATOR": ";",
				"PROJECT_KEY":   "  ",
			}
			cfg.Project.Key = "KEEP"
			config.ApplyEnv(cfg, func(k string) (string, bool) {
				v, ok := env[k]
				return v, ok
			})
			Expect(cfg.Xray.ClientID).To(Equal("from-env"))
			Expect(cfg.CSV.Separator).To(Equal(";"))
			Expect(cfg.Project.Key).To(Equal("KEEP"))
		})

		It("should let the process environment override dotenv", func() {
			GinkgoT().Setenv("CLIENT_ID", "process-id")
			cfg, err := config.LoadWithEnv("", envFile)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Xray.ClientID).To(Equal("process-id"))
			Expect(cfg.Xray.ClientSecret).To(Equal("dotenv-secret"))
			Expect(cfg.Paths.Base).To(Equal("/data/tests"))
		})

		It("should not export dotenv values to the process", func() {
			_, err := config.LoadWithEnv("", envFile)
			Expect(err).ToNot(HaveOccurred())
			_, ok := os.LookupEnv("AUTH_URL")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Credentials", func() {
		It("should name every missing variable", func() {
			_, _, _, err := config.DefaultConfig().Xray.Credentials()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("CLIENT_ID, CLIENT_SECRET, AUTH_URL"))
		})

		It("should return configured credentials", func() {
			x := config.XrayConfig{ClientID: "id", ClientSecret: "secret", AuthURL: "https://auth"}
			id, secret, authURL, err := x.Credentials()
			Expect(err).ToNot(HaveOccurred())
			Expect([]string{id, secret, authURL}).To(Equal([]string{"id", "secret", "https://auth"}))
		})
	})

	Describe("Validate", func() {
		It("should pass for defaults", func() {
			Expect(config.Validate(config.DefaultConfig())).To(Succeed())
		})

		It("should pass for full config", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(config.Validate(cfg)).To(Succeed())
		})

		It("should reject an unknown separator", func() {
			cfg := config.DefaultConfig()
			cfg.CSV.Separator = "|"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("csv.separator"))
		})

		It("should reject a relative import URL", func() {
			cfg := config.DefaultConfig()
			cfg.Xray.ImportURL = "/api/v1/import"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("xray.import_url"))
		})

		It("should reject an unknown upload mode", func() {
			cfg := config.DefaultConfig()
			cfg.Upload.Mode = "burst"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("upload.mode"))
		})

		It("should reject zero workers and shrinking backoff", func() {
			cfg := config.DefaultConfig()
			cfg.Upload.Workers = 0
			cfg.Upload.Backoff = 0.5
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("upload.workers"))
			Expect(err.Error()).To(ContainSubstring("upload.backoff"))
		})

		It("should fail for invalid log level", func() {
			cfg := config.DefaultConfig()
			cfg.Logging.Level = "verbose"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logging.level"))
		})
	})
})
