// Command export downloads the applicant list as a CSV or Excel file.
//
//	export -api http://localhost:8080/v1 -format csv -out .
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/export"
	"go-applicant-tracker/pkg/client"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("export: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	apiURL := fs.String("api", envOr("APPLICANT_API_URL", "http://localhost:8080/v1"), "applicant tracker API base URL")
	format := fs.String("format", string(domain.ExportCSV), "csv or xlsx")
	outDir := fs.String("out", ".", "output directory")
	token := fs.String("token", os.Getenv("APPLICANT_API_TOKEN"), "bearer token, when the API requires one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := domain.ExportFormat(*format)
	if f != domain.ExportCSV && f != domain.ExportXLSX {
		return fmt.Errorf("unsupported format %q", *format)
	}

	var opts []client.Option
	if *token != "" {
		opts = append(opts, client.WithToken(*token))
	}
	c := client.New(*apiURL, opts...)

	data, filename, err := c.Export(ctx, f)
	if isEmptyExport(err) {
		fmt.Fprintln(stdout, export.EmptyMessage)
		return nil
	}
	if err != nil {
		return err
	}
	if filename == "" || filepath.Base(filename) != filename {
		filename = export.Filename(f, time.Now())
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(*outDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(stdout, "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

// isEmptyExport tells the API's "nothing to export" answer apart from any
// other 404, such as a base URL missing its /v1 prefix
func isEmptyExport(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusNotFound &&
		apiErr.Message == export.EmptyMessage
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
