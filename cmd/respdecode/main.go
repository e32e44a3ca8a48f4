// Command respdecode decodes a recorded API response the way the client
// library does and prints the result.
//
// A capture is a YAML or JSON document:
//
//	status: 200
//	headers:
//	  Content-Type: ["application/json"]
//	  ETag: ["abc123"]
//	body: '{"id":42,"name":"octo"}'
//
// Run:
//
//	go run ./cmd/respdecode capture.yaml
//	go run ./cmd/respdecode --array list.yaml            — decode into a list (204 prints [])
//	go run ./cmd/respdecode --log-level debug bad.yaml   — show the raw body of a failed decode
//	cat capture.yaml | go run ./cmd/respdecode -
//
// Below debug level a failed decode prints the raw body to stderr instead of
// the diagnostic record.
//
// RESPDECODE_LOG_LEVEL sets the default log level and may be placed in .env.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/bjaus/apiclient"
)

const envLogLevel = "RESPDECODE_LOG_LEVEL"

func main() {
	//nolint:errcheck,gosec // .env is optional
	godotenv.Load()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	array    bool
	logLevel string
	logLimit float64
}

// output is the printed form of a decoded response.
type output struct {
	Status  int                 `json:"status"`
	Headers map[string][]string `json:"headers"`
	Body    any                 `json:"body"`
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "respdecode [flags] <capture-file|->",
		Short:         "Decode a recorded API response",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			parserOpts := []apiclient.ParserOption{apiclient.WithLogger(logger)}
			if opts.logLimit > 0 {
				parserOpts = append(parserOpts, apiclient.WithDiagnosticLimit(rate.Limit(opts.logLimit), 1))
			}

			capture, err := readCapture(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			// Decoding consumes the capture; keep a copy for the raw dump.
			raw := apiclient.NewCapture(capture.Status, capture.Header, capture.Body)

			res, err := decode(apiclient.NewParser(parserOpts...), capture, opts.array)
			if err != nil {
				if !logger.Enabled(cmd.Context(), slog.LevelDebug) {
					dumpRawBody(cmd.ErrOrStderr(), raw)
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(output{
				Status:  res.StatusCode(),
				Headers: res.AllHeaders(),
				Body:    res.Body(),
			})
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	defaultLevel := os.Getenv(envLogLevel)
	if defaultLevel == "" {
		defaultLevel = "info"
	}

	cmd.Flags().BoolVar(&opts.array, "array", false, "Decode the body as a list")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", defaultLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().Float64Var(&opts.logLimit, "log-limit", 0, "Maximum decode failure records per second (0 = unlimited)")

	return cmd
}

func readCapture(path string, stdin io.Reader) (*apiclient.Capture, error) {
	if path == "-" {
		return apiclient.LoadCapture(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return apiclient.LoadCapture(f)
}

// decode parses cr as a list or as any JSON value. Lists are rewrapped so
// both shapes print through the same Response[any].
func decode(p *apiclient.Parser, cr apiclient.ConnectorResponse, array bool) (*apiclient.Response[any], error) {
	if !array {
		return apiclient.Parse[any](p, cr)
	}

	res, err := apiclient.Parse[[]any](p, cr)
	if err != nil {
		return nil, err
	}
	var body any
	if list := res.Body(); list != nil {
		body = *list
	}
	return apiclient.WithBody(res, &body), nil
}

// dumpRawBody prints the body of cr without failing the command further.
func dumpRawBody(w io.Writer, cr apiclient.ConnectorResponse) {
	body, ok := apiclient.TryBodyString(cr)
	if !ok {
		return
	}
	fmt.Fprintf(w, "raw body:\n%s\n", body)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
