package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/siherrmann/eventer/core/extract"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

// Execute implements the go-flags Commander interface for ExtractCommand.
func (c *ExtractCommand) Execute(args []string) error {
	html, err := os.ReadFile(c.File)
	if err != nil {
		return helper.NewError("read html", err)
	}

	e, err := newEventer(c.globals, c.Store)
	if err != nil {
		return err
	}
	defer e.Close()

	if c.Embeddings {
		if err := e.UseEmbeddings(); err != nil {
			return err
		}
	}

	ctx := context.Background()
	req := e.NewRequest(ctx, c.Query)

	res, err := e.ProcessHTML(ctx, req, string(html), c.URL, c.DisasterType)
	if res == nil {
		return err
	}
	if writeErr := writeJSON(c.out, res); writeErr != nil {
		return writeErr
	}
	return err
}

// Execute implements the go-flags Commander interface for BatchCommand.
func (c *BatchCommand) Execute(args []string) error {
	docs, err := readDocuments(c.Dir, c.DisasterType, c.Query)
	if err != nil {
		return err
	}

	e, err := newEventer(c.globals, c.Store)
	if err != nil {
		return err
	}
	defer e.Close()

	if c.ServeMetrics {
		server := e.Metrics.NewServer(e.Config.Metrics.ListenAddress)
		go func() {
			if err := server.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	ctx := context.Background()
	req := e.NewRequest(ctx, c.Query)

	results, stats, err := e.ProcessDocuments(ctx, req, docs)
	if writeErr := writeJSON(c.out, map[string]interface{}{
		"bounds":     req.Bounds,
		"results":    results,
		"statistics": stats,
	}); writeErr != nil {
		return writeErr
	}
	return err
}

// readDocuments parses every .html file of dir in name order.
// The file name stands in for the source URL.
func readDocuments(dir string, disasterType string, query string) ([]*model.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, helper.NewError("read dir", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".html") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]*model.Document, 0, len(names))
	for _, name := range names {
		html, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, helper.NewError("read html", err)
		}
		doc, err := extract.ParseHTML(string(html), "file://"+name)
		if err != nil {
			return nil, helper.NewError("parse "+name, err)
		}
		doc.Source.DisasterType = disasterType
		doc.Source.Query = query
		docs = append(docs, doc)
	}
	return docs, nil
}
