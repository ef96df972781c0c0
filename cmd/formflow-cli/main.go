package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
)

func main() {
	source := flag.String("source", "form.json", "form document path or URL")
	operation := flag.String("operation", "", "treat the source as an OpenAPI document and import this operation")
	format := flag.String("format", "json", "payload format: json, form, or pretty")
	output := flag.String("output", "", "output file (stdout if empty)")
	submitURL := flag.String("submit", "", "POST the submitted payload to this URL")
	flag.Parse()

	ctx := context.Background()

	src := parseSource(*source)
	if src == nil {
		log.Fatalf("invalid source: %q", *source)
	}

	loader := formflow.NewLoader(schema.WithHTTPFallback(30 * time.Second))
	doc, err := loader.Load(ctx, src)
	if err != nil {
		log.Fatalf("Failed to load form document: %v", err)
	}

	var form schema.Form
	if *operation != "" {
		form, err = openapi.New(openapi.Options{}).Import(ctx, doc, *operation)
	} else {
		form, err = schema.ParseDocument(doc)
	}
	if err != nil {
		log.Fatalf("Failed to build form: %v", err)
	}

	var opts []session.Option
	if *submitURL != "" {
		opts = append(opts, session.WithSubmitter(httpSubmitter{url: *submitURL}))
	}

	sess, err := session.New(form, opts...)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	runner, err := tui.New(tui.WithOutputFormat(tui.OutputFormat(*format)))
	if err != nil {
		log.Fatalf("Failed to start prompt runner: %v", err)
	}

	payload, err := runner.Run(ctx, sess)
	if err != nil {
		log.Fatalf("Failed to complete form: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Payload written to %s\n", *output)
	} else {
		fmt.Println(string(payload))
	}
}

func parseSource(raw string) schema.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return schema.SourceFromURL(path)
	}
	return schema.SourceFromFile(path)
}

// httpSubmitter posts the payload as JSON. Non-2xx responses fail the
// handoff so the session surfaces a submission banner.
type httpSubmitter struct {
	url string
}

func (s httpSubmitter) Submit(ctx context.Context, values map[string]any) error {
	body, err := json.Marshal(values)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("submit: unexpected status %s", resp.Status)
	}
	return nil
}
