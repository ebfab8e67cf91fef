// Package main renders invoices to PDF.
//
// An invoice is captured as a small YAML file (number, dates, client, line
// items, notes). The issuer's details, logo, currency and payment terms come
// from config.yaml. The result is written as invoice-<number>.pdf and can be
// mailed right away.
//
// Usage: invoicer [--config FILE] render [--output DIR] [--send] INVOICE.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"invoicer/internal/asset"
	"invoicer/internal/export"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	version           = "1.0.0"
	defaultConfigName = "config.yaml"
)

// errExportFailed is all the user sees when layout or rendering breaks; the
// cause goes to the log.
var errExportFailed = errors.New("export failed")

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func newApp() *cli.App {
	return &cli.App{
		Name:    "invoicer",
		Usage:   "render invoices to PDF",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "configuration file",
				EnvVars: []string{"INVOICER_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "render an invoice file to PDF",
				ArgsUsage: "INVOICE.yaml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output directory (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "send",
						Usage: "e-mail the PDF after rendering",
					},
				},
				Action: renderAction,
			},
		},
	}
}

func renderAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one invoice file", 2)
	}

	cfg, err := loadConfig(defaultConfigName, c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if dir := c.String("output"); dir != "" {
		cfg.Output = dir
	}
	if c.Bool("send") {
		if err := cfg.canSend(); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer log.Sync() //nolint:errcheck

	path, err := run(c.Context, cfg, log, c.Args().First(), c.Bool("send"), time.Now())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

// run renders one invoice file into cfg.Output and optionally mails it.
// It returns the written file's path.
func run(ctx context.Context, cfg *Config, log *zap.Logger, file string, send bool, now time.Time) (string, error) {
	form, err := invoice.LoadForm(file)
	if err != nil {
		return "", err
	}
	doc, err := form.Document(cfg.Terms, now)
	if err != nil {
		return "", err
	}

	theme, err := cfg.theme()
	if err != nil {
		return "", err
	}
	exp := &export.Exporter{
		Theme:    theme,
		Business: cfg.Business,
		Currency: cfg.Currency,
		LogoRef:  cfg.Logo,
		Assets:   asset.NewLoader(log.Named("asset")),
		Logger:   log.Named("export"),
	}

	art, err := exp.Export(ctx, doc)
	if err != nil {
		log.Error("export failed", zap.String("file", file), zap.Error(err))
		return "", errExportFailed
	}
	path, err := art.Save(cfg.Output)
	if err != nil {
		return "", err
	}
	log.Info("invoice written", zap.String("path", path), zap.Int("pages", art.Pages))

	if send {
		subject := fmt.Sprintf("Invoice %s", doc.Number)
		if err := sendEmail(cfg, subject, Attachment{Filename: art.Name, Data: art.Data}); err != nil {
			return path, err
		}
		log.Info("invoice sent", zap.String("to", cfg.Email.To))
	}
	return path, nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
