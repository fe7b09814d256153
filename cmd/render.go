package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/pdfmcp/internal/application"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	wait   bool
	asJSON bool
}

type renderCall func(ctx context.Context, app *app, apiKey string) application.ToolResult

func newRenderCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render PDFs through the same tools the server exposes",
	}

	cmd.AddCommand(
		newRenderHTMLCmd(c),
		newRenderTemplateCmd(c),
	)

	return cmd
}

func newRenderHTMLCmd(c *cli) *cobra.Command {
	var flags renderFlags
	var file, pdfParams, metadata string
	var convertToImage, hasCover bool

	cmd := &cobra.Command{
		Use:   "html",
		Short: "Render an HTML document to PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			html, err := readHTML(cmd, file)
			if err != nil {
				return err
			}

			in := application.HTMLToPDFInput{
				HTML:              html,
				PDFParams:         pdfParams,
				Metadata:          metadata,
				WaitForCompletion: &flags.wait,
			}
			if cmd.Flags().Changed("convert-to-image") {
				in.ConvertToImage = &convertToImage
			}
			if cmd.Flags().Changed("has-cover") {
				in.HasCover = &hasCover
			}

			return runRender(cmd, c, flags, func(ctx context.Context, app *app, apiKey string) application.ToolResult {
				in.APIKey = apiKey
				return app.dispatcher.HTMLToPDF(ctx, in)
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "HTML file to render, - for stdin")
	cmd.Flags().StringVar(&pdfParams, "pdf-params", "", "PDF options as a JSON object")
	cmd.Flags().StringVar(&metadata, "metadata", "", "Document metadata as a JSON object")
	cmd.Flags().BoolVar(&convertToImage, "convert-to-image", false, "Return an image instead of a PDF")
	cmd.Flags().BoolVar(&hasCover, "has-cover", false, "Treat the first page as a cover")
	addRenderFlags(cmd, &flags)
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newRenderTemplateCmd(c *cli) *cobra.Command {
	var flags renderFlags
	var templateID, data string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Render a stored template with data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, c, flags, func(ctx context.Context, app *app, apiKey string) application.ToolResult {
				return app.dispatcher.GeneratePDF(ctx, application.GeneratePDFInput{
					APIKey:            apiKey,
					TemplateID:        templateID,
					Data:              data,
					WaitForCompletion: &flags.wait,
				})
			})
		},
	}

	cmd.Flags().StringVar(&templateID, "template-id", "", "Template to render")
	cmd.Flags().StringVar(&data, "data", "", "Template data as a JSON object")
	addRenderFlags(cmd, &flags)
	_ = cmd.MarkFlagRequired("template-id")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func addRenderFlags(cmd *cobra.Command, flags *renderFlags) {
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "Poll a queued render until it finishes")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Render JSON output")
}

func runRender(cmd *cobra.Command, c *cli, flags renderFlags, call renderCall) error {
	app, err := c.load(cmd)
	if err != nil {
		return err
	}
	apiKey, err := c.resolveAPIKey(cmd.Context(), app)
	if err != nil {
		return err
	}

	var result application.ToolResult
	work := func(ctx context.Context) error {
		result = call(ctx, app, apiKey)
		return nil
	}

	if flags.wait && !flags.asJSON {
		if err := runWaitSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering PDF...", work); err != nil {
			return err
		}
	} else if err := work(cmd.Context()); err != nil {
		return err
	}

	if result.IsError {
		return errors.New(strings.TrimPrefix(result.Text, "Error: "))
	}

	if flags.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Data)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	return err
}

func readHTML(cmd *cobra.Command, file string) (string, error) {
	if file == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read html from stdin: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read html file: %w", err)
	}
	return string(raw), nil
}
