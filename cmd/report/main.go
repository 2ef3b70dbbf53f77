// Command report generates one report from the configured record backend
// and writes it to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"masjid/internal/cli"
	"masjid/internal/config"
	applog "masjid/internal/log"
	"masjid/internal/report"
)

const generateTimeout = 2 * time.Minute

func main() {
	var (
		kind   = flag.String("kind", "", "report kind: donations, expenses, projects, donors or accounts")
		start  = flag.String("start", "", "range start, YYYY-MM-DD")
		end    = flag.String("end", "", "range end, YYYY-MM-DD")
		format = flag.String("format", string(report.FormatPDF), "output format")
		out    = flag.String("out", "", "output path (defaults to the report's file name)")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	req := report.Request{
		Kind:   report.Kind(*kind),
		Start:  *start,
		End:    *end,
		Format: report.Format(*format),
	}
	path, err := run(cfg, logger, req, *out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func run(cfg *config.Config, logger *applog.Logger, req report.Request, out string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	defer app.Close()

	doc, err := app.Reports.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = doc.Name
	}
	if err := writeFile(out, doc.Bytes); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}

// writeFile writes through a temporary file in the target directory so a
// failed write never leaves a partial document behind.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
