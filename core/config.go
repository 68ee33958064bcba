package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StoreXLSX     = "xlsx"
	StoreGSheets  = "gsheets"
	StorePostgres = "postgres"
)

type (
	ServerConfig struct {
		Address         string
		DebugHost       string
		Host            string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	StoreConfig struct {
		Driver              string
		XLSXPath            string
		SpreadsheetID       string
		ServiceAccountEmail string
		ServiceAccountKey   string
		CacheRedisAddr      string
		CacheTTL            time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	PDFConfig struct {
		ChromePath string
		RemoteURL  string // ws://host:9222 of an already running browser; ExecAllocator when empty
		Timeout    time.Duration
	}

	GeminiConfig struct {
		APIKey string
		Model  string
	}

	// InvoiceConfig holds the business details printed on invoices.
	InvoiceConfig struct {
		BusinessName string
		Address      []string
		Phone        string
		CurrencyCode string
		BankDetails  string
		Registration string
		LogoURL      string
	}

	Config struct {
		AppName         string
		Env             string
		Build           string
		Debug           bool
		TestMode        bool
		WorkDir         string
		Currency        string
		FrontendBaseURL string
		RollbarToken    string
		SendgridApiKey  string
		Server          ServerConfig
		Store           StoreConfig
		Database        DatabaseConfig
		PDF             PDFConfig
		Gemini          GeminiConfig
		Invoice         InvoiceConfig

		defaultFromEmail string
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

func (d DatabaseConfig) Address() string {
	return d.Host + ":" + d.Port
}

// NewConfig reads the configuration from the environment.
// `ENV` selects the env prefix (DEV by default) and the optional `config/.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Tuition Centre")
	v.SetDefault("build", "develop")
	v.SetDefault("currency", "RM")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("serverDisableReqLogs", false)

	v.SetDefault("storeDriver", StoreMemory)
	v.SetDefault("storeXlsxPath", "tuition.xlsx")
	v.SetDefault("storeSpreadsheetID", "")
	v.SetDefault("storeServiceAccountEmail", "")
	v.SetDefault("storeServiceAccountKey", "")
	v.SetDefault("storeCacheRedisAddr", "")
	v.SetDefault("storeCacheTTL", 30*time.Second)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "tuition")
	v.SetDefault("dbUser", "postgres")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("pdfChromePath", "")
	v.SetDefault("pdfRemoteURL", "")
	v.SetDefault("pdfTimeout", 30*time.Second)

	v.SetDefault("geminiApiKey", "")
	v.SetDefault("geminiModel", "gemini-1.5-flash")

	v.SetDefault("invoiceBusinessName", "Minda Prima")
	v.SetDefault("invoiceAddress", "5406A, Jalan Kenari 18|Bandar Putra, 81000|Kulai, Johor")
	v.SetDefault("invoicePhone", "(+60) 137090363")
	v.SetDefault("invoiceCurrencyCode", "MYR")
	v.SetDefault("invoiceBankDetails", "")
	v.SetDefault("invoiceRegistration", "")
	v.SetDefault("invoiceLogoURL", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	workDir := ProjectRoot()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:         v.GetString("appName"),
		Env:             env,
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		WorkDir:         workDir,
		Currency:        v.GetString("currency"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Address:         v.GetString("serverAddress"),
			DebugHost:       v.GetString("serverDebugHost"),
			Host:            v.GetString("serverHost"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:  v.GetBool("serverDisableReqLogs"),
		},
		Store: StoreConfig{
			Driver:              strings.ToLower(v.GetString("storeDriver")),
			XLSXPath:            v.GetString("storeXlsxPath"),
			SpreadsheetID:       v.GetString("storeSpreadsheetID"),
			ServiceAccountEmail: v.GetString("storeServiceAccountEmail"),
			// keys pasted into env files usually carry escaped newlines
			ServiceAccountKey: strings.ReplaceAll(v.GetString("storeServiceAccountKey"), `\n`, "\n"),
			CacheRedisAddr:    v.GetString("storeCacheRedisAddr"),
			CacheTTL:          v.GetDuration("storeCacheTTL"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		PDF: PDFConfig{
			ChromePath: v.GetString("pdfChromePath"),
			RemoteURL:  v.GetString("pdfRemoteURL"),
			Timeout:    v.GetDuration("pdfTimeout"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("geminiApiKey"),
			Model:  v.GetString("geminiModel"),
		},
		Invoice: InvoiceConfig{
			BusinessName: v.GetString("invoiceBusinessName"),
			Address:      splitLines(v.GetString("invoiceAddress")),
			Phone:        v.GetString("invoicePhone"),
			CurrencyCode: v.GetString("invoiceCurrencyCode"),
			BankDetails:  v.GetString("invoiceBankDetails"),
			Registration: v.GetString("invoiceRegistration"),
			LogoURL:      v.GetString("invoiceLogoURL"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}

// splitLines splits a `|` separated env value.
func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "|") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// NewTestConfig returns the configuration used by tests: in-memory store, no outbound services.
func NewTestConfig() *Config {
	return &Config{
		AppName:  "Tuition Centre",
		Env:      "TEST",
		Build:    "test",
		TestMode: true,
		WorkDir:  ProjectRoot(),
		Currency: "RM",
		Server: ServerConfig{
			Address:         ":0",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Store: StoreConfig{Driver: StoreMemory},
		PDF:   PDFConfig{Timeout: 5 * time.Second},
		Invoice: InvoiceConfig{
			BusinessName: "Tuition Centre",
			Address:      []string{"1 Test Street", "Test City"},
			CurrencyCode: "MYR",
		},
		defaultFromEmail: "noreply@localhost",
	}
}
