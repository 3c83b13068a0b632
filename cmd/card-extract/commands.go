package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/card-extract/internal/imaging"
	"github.com/ironsheep/card-extract/internal/ocr"
	"github.com/ironsheep/card-extract/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.newServer()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = srv.ListenAndServe(ctx, a.cfg.Addr(), server.HTTPOptions{
				MaxBodyBytes:    a.cfg.HTTP.MaxBodyBytes,
				ReadTimeout:     a.cfg.HTTP.ReadTimeout,
				WriteTimeout:    a.cfg.HTTP.WriteTimeout,
				ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
			})
			if err != nil {
				a.logger.Error("server error", zap.Error(err))
				return err
			}
			a.logger.Info("stopped")
			return nil
		},
	}
	cmd.Flags().Int("port", 8080, "listen port")
	cmd.Flags().String("host", "0.0.0.0", "listen host")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over stdin/stdout",
		Long: `Serve the card_extract, card_extract_image and card_health tools over
MCP (JSON-RPC 2.0, one message per line). Logs go to stderr; stdout is
reserved for protocol traffic. Configure it in your MCP client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.newServer()
			if err != nil {
				return err
			}
			a.logger.Debug("mcp server starting", zap.String("version", Version))
			return srv.Run()
		},
	}
}

func newExtractCmd(a *app) *cobra.Command {
	var file, imagePath string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract one card and print the record as JSON",
		Long: `Extract one card. Text is read from --file, or from stdin when neither
--file nor --image is given. --image OCRs a card image first and adds
ocr_text to the output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" && imagePath != "" {
				return errors.New("--file and --image are mutually exclusive")
			}

			pipeline, err := a.newPipeline()
			if err != nil {
				return err
			}

			var result interface{}
			if imagePath != "" {
				engine := a.newOCR()
				if engine == nil {
					return ocr.ErrUnavailable
				}
				img, err := imaging.NewImageCache().Load(imagePath)
				if err != nil {
					return err
				}
				text, err := engine.Text(img)
				if err != nil {
					return err
				}
				record, err := pipeline.Extract(text)
				if err != nil {
					return err
				}
				result = server.ImageExtraction{Record: record, OCRText: text}
			} else {
				text, err := readText(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				record, err := pipeline.Extract(text)
				if err != nil {
					return err
				}
				result = record
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read card text from a file")
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "OCR a card image (needs a tesseract build)")
	return cmd
}

// readText reads card text from path, or from stdin when path is empty.
func readText(path string, stdin io.Reader) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read card text: %w", err)
	}
	return string(b), nil
}
