// Package dataset compiles or parses every diagram below a directory with
// a bounded worker pool and aggregates the outcome.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/liamcoop/bpmnconstraints/bpmn"
	"github.com/liamcoop/bpmnconstraints/engine"
	"github.com/liamcoop/bpmnconstraints/internal/logger"
	"github.com/liamcoop/bpmnconstraints/store"
	"github.com/liamcoop/bpmnconstraints/templates"
)

// Options configures a batch run.
type Options struct {
	// Workers bounds concurrent diagrams; 0 means GOMAXPROCS.
	Workers int
	// Request is applied to every diagram; Name is set per file.
	Request engine.Request
}

// Result is the outcome for one diagram.
type Result struct {
	Path  string       `json:"path"`
	Model *store.Model `json:"model,omitempty"`
	Err   error        `json:"-"`
	Error string       `json:"error,omitempty"`
}

// Stats aggregates a compile run.
type Stats struct {
	Files       int                    `json:"files"`
	Failed      int                    `json:"failed"`
	Constraints int                    `json:"constraints"`
	ByKind      map[templates.Kind]int `json:"by_kind"`
	ByError     map[string]int         `json:"by_error"`
}

// Report is the outcome of Compile, results in path order.
type Report struct {
	Results []Result `json:"results"`
	Stats   Stats    `json:"stats"`
}

// Files lists the .bpmn and .xml files below dir in lexical order.
func Files(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".bpmn", ".xml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return paths, nil
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Compile compiles every diagram below dir through en. A diagram that
// fails is recorded in its Result and does not stop the run; only
// cancellation of ctx does.
func Compile(ctx context.Context, en *engine.Engine, dir string, opts Options) (*Report, error) {
	paths, err := Files(dir)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Workers))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			req := opts.Request
			req.Name = relName(dir, path)
			m, err := en.CompileFile(ctx, path, req)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			results[i] = Result{Path: path, Model: m, Err: err}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results, Stats: summarize(results)}
	logger.Info("dataset compiled",
		"dir", dir,
		"files", report.Stats.Files,
		"failed", report.Stats.Failed,
		"constraints", report.Stats.Constraints,
	)
	return report, nil
}

func relName(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
}

func summarize(results []Result) Stats {
	s := Stats{
		Files:   len(results),
		ByKind:  make(map[templates.Kind]int),
		ByError: make(map[string]int),
	}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			s.ByError[errorClass(r.Err)]++
			continue
		}
		s.Constraints += len(r.Model.Constraints)
		for _, c := range r.Model.Constraints {
			s.ByKind[c.Kind]++
		}
	}
	return s
}

// errorClass buckets a failure by its sentinel.
func errorClass(err error) string {
	switch {
	case errors.Is(err, bpmn.ErrDanglingReference):
		return "dangling_reference"
	case errors.Is(err, bpmn.ErrNoEntryPoint):
		return "no_entry_point"
	case errors.Is(err, bpmn.ErrMalformedInput):
		return "malformed_input"
	default:
		return "other"
	}
}

// ParseStats aggregates a parse-only run.
type ParseStats struct {
	Files    int                      `json:"files"`
	Failed   int                      `json:"failed"`
	Flows    int                      `json:"flows"`
	Elements map[bpmn.ElementKind]int `json:"elements"`
	ByError  map[string]int           `json:"by_error"`
}

// Parse decodes every diagram below dir without compiling and counts
// elements per kind.
func Parse(ctx context.Context, dir string, workerCount int) (*ParseStats, error) {
	paths, err := Files(dir)
	if err != nil {
		return nil, err
	}

	stats := &ParseStats{
		Files:    len(paths),
		Elements: make(map[bpmn.ElementKind]int),
		ByError:  make(map[string]int),
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(workerCount))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			graph, err := bpmn.ParseFile(path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				stats.ByError[errorClass(err)]++
				logger.Debug("parse failed", "diagram", path, "error", err)
				return nil
			}
			stats.Flows += len(graph.Flows())
			for kind, n := range graph.KindCounts() {
				stats.Elements[kind] += n
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
