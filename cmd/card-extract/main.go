package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/card-extract/internal/card"
	"github.com/ironsheep/card-extract/internal/config"
	"github.com/ironsheep/card-extract/internal/imaging"
	"github.com/ironsheep/card-extract/internal/logging"
	"github.com/ironsheep/card-extract/internal/ner"
	"github.com/ironsheep/card-extract/internal/ocr"
	"github.com/ironsheep/card-extract/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// app holds what every subcommand needs once config is resolved.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
}

func main() {
	a := &app{}
	if err := execute(newRootCmd(a), a); err != nil {
		os.Exit(1)
	}
}

// execute runs root and then closes the log. cobra skips post-run hooks
// when a command fails, so the close cannot live in one.
func execute(root *cobra.Command, a *app) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

// close flushes the logger and closes the log file. It is safe to call
// more than once.
func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	closer := a.closeLog
	a.closeLog = nil
	return closer()
}

func newRootCmd(a *app) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "card-extract",
		Short: "Extract contact fields from business-card text and images",
		Long: `card-extract pulls Name, company, Address, Designation, Email, phone
numbers and Website out of business-card text. It serves an HTTP API
(serve), an MCP tool server over stdio (mcp), or runs once (extract).

Configuration is read from card-extract.yaml (or --config), then
CARD_EXTRACT_* environment variables (PORT and DEBUG are also honored),
then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, closer, err := logging.New(logging.Options{
				Level:       cfg.Log.Level,
				Development: cfg.Debug,
				File:        cfg.Log.File,
				MaxSizeMB:   cfg.Log.MaxSizeMB,
				MaxBackups:  cfg.Log.MaxBackups,
				Console:     os.Stderr,
			})
			if err != nil {
				return err
			}
			a.cfg, a.logger, a.closeLog = cfg, logger, closer
			if cfg.File != "" {
				logger.Debug("config loaded", zap.String("file", cfg.File))
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultFile+")")
	root.PersistentFlags().Bool("debug", false, "debug logging (console format, input text logged)")

	root.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newExtractCmd(a),
		newVersionCmd(),
	)
	return root
}

// newServer loads the recognizer and OCR engine and builds the server.
func (a *app) newServer() (*server.Server, error) {
	pipeline, err := a.newPipeline()
	if err != nil {
		return nil, err
	}
	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithVersion(Version),
	}
	if engine := a.newOCR(); engine != nil {
		opts = append(opts, server.WithOCR(engine))
	}
	return server.New(pipeline, opts...), nil
}

func (a *app) newPipeline() (*card.Pipeline, error) {
	model, err := ner.Load(a.cfg.NER.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load recognizer: %w", err)
	}
	a.logger.Info("recognizer loaded", zap.String("model", model.Name()))
	return card.NewPipeline(model), nil
}

// newOCR returns nil when Tesseract support is not compiled in.
func (a *app) newOCR() *ocr.Engine {
	if !ocr.Available() {
		a.logger.Info("ocr disabled: binary built without tesseract support")
		return nil
	}
	prep := imaging.DefaultPrepareOptions()
	prep.MinWidth = a.cfg.OCR.MinWidth
	prep.Binarize = a.cfg.OCR.Binarize

	engine := ocr.New(ocr.Options{
		Language:       a.cfg.OCR.Language,
		TessdataPrefix: a.cfg.OCR.TessdataPrefix,
		Prepare:        prep,
	})
	a.logger.Info("ocr enabled",
		zap.String("tesseract", ocr.Version()),
		zap.String("language", engine.Language()))
	return engine
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "card-extract %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			if ocr.Available() {
				fmt.Fprintf(out, "  Tesseract:  %s\n", ocr.Version())
			} else {
				fmt.Fprintln(out, "  Tesseract:  not compiled in")
			}
		},
	}
}
