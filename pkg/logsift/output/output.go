// Package output provides formatters for displaying logsift results in
// various output formats (pretty, plain, json, yaml, etc.).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// Kind names what a Result carries.
type Kind string

const (
	KindRecords  Kind = "records"
	KindAnalysis Kind = "analysis"
	KindFolders  Kind = "folders"
)

// Result contains the complete output data for formatting. Exactly one of
// Records, Analysis or Folders is meaningful, according to Kind.
type Result struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Source is the archive reference or local root.
	Source string `json:"source" yaml:"source"`

	// Range describes the applied date window.
	Range string `json:"range,omitempty" yaml:"range,omitempty"`

	Records  []types.LogRecord      `json:"records,omitempty" yaml:"records,omitempty"`
	Analysis *types.ArchiveAnalysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Folders  []types.FolderInfo     `json:"folders,omitempty" yaml:"folders,omitempty"`

	// Summary is set when bucket counts were requested.
	Summary *types.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Matched is the record count before any limit was applied.
	Matched int `json:"matched,omitempty" yaml:"matched,omitempty"`

	Duration time.Duration `json:"-" yaml:"-"`
	Cached   bool          `json:"cached" yaml:"cached"`
	DaemonUp bool          `json:"daemon_up" yaml:"daemon_up"`

	// Warnings contains any warning messages generated during the run.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// RecordFormatter is implemented by formatters that can emit one record at
// a time, as tailing requires.
type RecordFormatter interface {
	FormatRecord(w *bytes.Buffer, rec types.LogRecord) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// Streaming returns a RecordFormatter for name, falling back to jsonl when
// the named formatter cannot stream.
func Streaming(name string) (RecordFormatter, error) {
	f, err := Get(name)
	if err != nil {
		return nil, err
	}
	if rf, ok := f.(RecordFormatter); ok {
		return rf, nil
	}
	return &JSONLFormatter{}, nil
}
