// Package helidb is the public library contract spec.md §6 names:
// Config.Connect() gives a Handle, and Handle.Execute(batch) runs a
// batch of SQL statements against the connection's catalog.
package helidb

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rijuyuezhu/helidb/codec"
	"github.com/rijuyuezhu/helidb/db"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/executor"
	"github.com/rijuyuezhu/helidb/logging"
	"github.com/rijuyuezhu/helidb/parser"
	"github.com/rijuyuezhu/helidb/tablemgr"
)

// Config selects how a Handle loads, persists, and executes its
// catalog (spec.md §4.6: "{ storage_path?, reinit, write_back,
// parallel }").
type Config struct {
	// StoragePath, if set, backs the catalog with a file encoded by
	// the codec package. Left nil, the catalog is purely in-memory.
	StoragePath *string `yaml:"storage_path,omitempty"`

	// Reinit ignores any existing file at StoragePath and starts from
	// an empty catalog instead of decoding it.
	Reinit bool `yaml:"reinit,omitempty"`

	// WriteBack encodes and overwrites StoragePath after every batch
	// that parses, whether or not its statements succeeded.
	WriteBack bool `yaml:"write_back,omitempty"`

	// Parallel selects tablemgr.Parallel instead of tablemgr.Sequential.
	Parallel bool `yaml:"parallel,omitempty"`

	// Logger receives startup and per-batch trace messages. A nil
	// Logger defaults to logging.Null{} — silent.
	Logger logging.Logger
}

// LoadConfigFile decodes a YAML config file into a Config, rejecting
// unknown keys so a typo in the file surfaces instead of being
// silently ignored.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.IOErrorf("read config %q: %v", path, err)
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errs.FormatErrorf("parse config %q: %v", path, err)
	}
	return cfg, nil
}

// Handle is one connected catalog: a Database plus the manager and
// persistence settings Connect resolved it with. Not safe for
// concurrent use (spec.md §5: "not safe to call from multiple threads
// against the same database").
type Handle struct {
	cfg     Config
	catalog *db.Database
	mgr     tablemgr.Manager
	log     logging.Logger
}

// Connect resolves a Config into a Handle: decoding any existing
// catalog file (unless Reinit), and picking the table manager
// (spec.md §4.6 steps 1-2).
func (c Config) Connect() (*Handle, error) {
	log := c.Logger
	if log == nil {
		log = logging.Null{}
	}

	var mgr tablemgr.Manager = tablemgr.Sequential{}
	if c.Parallel {
		mgr = tablemgr.Parallel{}
	}

	catalog := db.New()
	if c.StoragePath != nil && !c.Reinit {
		data, err := os.ReadFile(*c.StoragePath)
		switch {
		case os.IsNotExist(err):
			log.Printf("no catalog at %q, starting empty", *c.StoragePath)
		case err != nil:
			return nil, errs.IOErrorf("open storage %q: %v", *c.StoragePath, err)
		default:
			decoded, err := codec.Decode(data)
			if err != nil {
				return nil, err
			}
			catalog = decoded
			log.Printf("loaded catalog from %q", *c.StoragePath)
		}
	}

	return &Handle{cfg: c, catalog: catalog, mgr: mgr, log: log}, nil
}

// Execute parses and runs one batch of SQL statements (spec.md §4.6
// steps 3-7). Per-statement errors are accumulated rather than
// aborting the batch; ok reflects whether any statement failed.
func (h *Handle) Execute(batch string) (ok bool, output string) {
	stmts, err := parser.ParseBatch(batch)
	if err != nil {
		return false, err.Error()
	}

	exec := executor.New(h.catalog, h.mgr)
	var batchErr errs.Batch
	for _, stmt := range stmts {
		if err := exec.Exec(stmt); err != nil {
			h.log.Printf("statement failed: %v", err)
			batchErr.Add(err)
		}
	}

	// Write-back is unconditional on the batch outcome (spec.md §4.6
	// step 6 runs regardless of step 4's per-statement failures): a
	// statement after a failing one still ran and may have mutated the
	// catalog, and earlier successful statements' effects must persist
	// too (spec.md §8 scenario 2).
	if h.cfg.WriteBack && h.cfg.StoragePath != nil {
		if err := h.persist(); err != nil {
			return false, err.Error()
		}
	}

	if batchErr.Failed() {
		return false, batchErr.Render()
	}

	result := exec.Output()
	if result == "" {
		result = errs.NoResults
	}
	return true, result
}

// persist encodes the current catalog and overwrites StoragePath
// (spec.md §6: "truncate-then-overwrite semantics, no atomic rename
// required").
func (h *Handle) persist() error {
	data, err := codec.Encode(h.catalog)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*h.cfg.StoragePath, data, 0o644); err != nil {
		return errs.IOErrorf("write storage %q: %v", *h.cfg.StoragePath, err)
	}
	h.log.Printf("wrote catalog to %q", *h.cfg.StoragePath)
	return nil
}

// Database exposes the underlying catalog for callers that need
// direct introspection.
func (h *Handle) Database() *db.Database { return h.catalog }
