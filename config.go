package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"invoicer/internal/invoice"
	"invoicer/internal/layout"
	"invoicer/internal/logger"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type EmailConfig struct {
	From string
	To   string
}

type ThemeConfig struct {
	Accent string // #rrggbb
	Font   string // core font family
	Paper  string // a4 or letter
}

// Config is the issuer's setup; the invoices themselves come from separate
// files.
type Config struct {
	Business layout.Business
	Logo     string // path or URL
	Currency string
	Terms    invoice.Terms
	Theme    ThemeConfig
	Output   string
	SMTP     SMTPConfig
	Email    EmailConfig
	Log      logger.Config
}

// loadConfig reads the YAML configuration. path wins over name; name is
// searched in the working directory and ~/.config/invoicer. Environment
// variables prefixed INVOICER_ override file values (INVOICER_SMTP_PASS).
func loadConfig(name, path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(name, filepath.Ext(name)))
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/invoicer")
	}

	v.SetEnvPrefix("INVOICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Business: layout.Business{
			Name:    v.GetString("business.name"),
			Address: v.GetString("business.address"),
			Email:   v.GetString("business.email"),
			Phone:   v.GetString("business.phone"),
			Website: v.GetString("business.website"),
		},
		Logo:     v.GetString("logo"),
		Currency: v.GetString("currency"),
		Terms: invoice.Terms{
			Days:     v.GetInt("terms.days"),
			Province: v.GetString("terms.province"),
		},
		Theme: ThemeConfig{
			Accent: v.GetString("theme.accent"),
			Font:   v.GetString("theme.font"),
			Paper:  v.GetString("theme.paper"),
		},
		Output: v.GetString("output"),
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.user"),
			Password: v.GetString("smtp.pass"),
		},
		Email: EmailConfig{
			From: v.GetString("email.from"),
			To:   v.GetString("email.to"),
		},
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("currency", "EUR")
	v.SetDefault("terms.days", 14)
	v.SetDefault("terms.province", invoice.DefaultProvince)
	v.SetDefault("theme.paper", "a4")
	v.SetDefault("output", ".")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Business.Name) == "" {
		return errors.New("business.name is required")
	}
	if c.Terms.Days < 0 {
		return fmt.Errorf("terms.days must not be negative, got %d", c.Terms.Days)
	}
	if _, err := c.theme(); err != nil {
		return err
	}
	return nil
}

// canSend reports whether enough is configured to mail an invoice.
func (c *Config) canSend() error {
	switch {
	case c.SMTP.Host == "":
		return errors.New("smtp.host is not configured")
	case c.Email.From == "" || c.Email.To == "":
		return errors.New("email.from and email.to are required to send")
	}
	return nil
}

// theme applies the configured overrides to the default look.
func (c *Config) theme() (layout.Theme, error) {
	t := layout.DefaultTheme()
	if c.Theme.Accent != "" {
		accent, err := layout.Hex(c.Theme.Accent)
		if err != nil {
			return t, fmt.Errorf("theme.accent: %w", err)
		}
		t.Accent = accent
	}
	if c.Theme.Font != "" {
		font, ok := coreFonts[strings.ToLower(c.Theme.Font)]
		if !ok {
			return t, fmt.Errorf("theme.font: unsupported font %q", c.Theme.Font)
		}
		t.FontFamily = font
	}
	switch strings.ToLower(c.Theme.Paper) {
	case "", "a4":
		t.Geometry = layout.A4()
	case "letter":
		t.Geometry = layout.Letter()
	default:
		return t, fmt.Errorf("theme.paper: unsupported paper size %q", c.Theme.Paper)
	}
	return t, nil
}

// coreFonts lists the standard PDF fonts that need no embedding.
var coreFonts = map[string]string{
	"helvetica": "Helvetica",
	"arial":     "Arial",
	"times":     "Times",
	"courier":   "Courier",
}
