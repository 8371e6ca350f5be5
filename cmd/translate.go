package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/translation"
	"github.com/spf13/cobra"
)

type translateFlags struct {
	File           string
	SourceLanguage string
	TargetLanguage string
}

func newTranslateCmd(global *globalFlags) *cobra.Command {
	flags := &translateFlags{}
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate one request and print the JSON result",
		Long: `Translate one request without starting the server. The request is read
from --file or stdin and may be a JSON object with code_to_translate,
source_language and target_language, or plain source code.`,
		Example: `translator translate --file main.py --from Python --to Go
echo '{"code_to_translate":"print(1)","target_language":"Rust"}' | translator translate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), global, flags, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&flags.File, "file", "f", "", "File to read the request from (default: stdin)")
	cmd.Flags().StringVar(&flags.SourceLanguage, "from", "", "Source language, wraps plain code into a request")
	cmd.Flags().StringVar(&flags.TargetLanguage, "to", "", "Target language, wraps plain code into a request")
	return cmd
}

// readRequest returns the raw request text. When a language flag is set the
// input is treated as plain code and wrapped into a JSON request.
func readRequest(flags *translateFlags, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if flags.File != "" {
		data, err = os.ReadFile(flags.File)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read request: %w", err)
	}
	raw := string(data)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("request is empty")
	}
	if flags.SourceLanguage == "" && flags.TargetLanguage == "" {
		return raw, nil
	}

	req := map[string]string{"code_to_translate": raw}
	if flags.SourceLanguage != "" {
		req["source_language"] = flags.SourceLanguage
	}
	if flags.TargetLanguage != "" {
		req["target_language"] = flags.TargetLanguage
	}
	wrapped, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	return string(wrapped), nil
}

func runTranslate(ctx context.Context, global *globalFlags, flags *translateFlags, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := readRequest(flags, stdin)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, global)
	if err != nil {
		return err
	}
	defer app.close()

	if app.cfg.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.cfg.ExecutionTimeout)
		defer cancel()
	}

	req := translation.ParseRequest(raw)
	app.logger.Info("Translating", "from", req.SourceLanguage, "to", req.TargetLanguage, "bytes", len(req.Code))

	outcome, err := app.invoker.Invoke(ctx, translation.BuildPrompt(req), app.candidates)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	app.logger.Info("Translation completed", "model", outcome.Model.Key(), "attempts", len(outcome.Attempts))

	_, err = fmt.Fprintln(stdout, translation.NormalizePayload(outcome.Payload))
	return err
}
