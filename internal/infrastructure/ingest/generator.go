// Package ingest builds the dashboard dataset from yearly xlsx roster exports.
//
// Expected layout:
//
//	ROOT/<School>/<Program>/<Year>.xlsx
//
// Only the Band, Choir, Dance and Theatre folders are read. Schools listed in
// Config.TeacherSchools are re-bucketed by the teacher named in each sheet
// header instead of by folder.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/logger"
	"github.com/arts-recruitment/dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// TeacherRule routes files whose header teacher contains any of Match to Program.
type TeacherRule struct {
	Match   []string `yaml:"match"`
	Program string   `yaml:"program"`
}

// Config controls dataset generation.
type Config struct {
	// Root is the directory holding one folder per school.
	Root string

	// Programs are the program folder names that are read, in bucket order.
	Programs []string

	// ExcludeDirs are top-level folders that are never treated as schools.
	ExcludeDirs []string

	// TeacherSchools are bucketed by TeacherRules instead of by folder.
	TeacherSchools []string
	TeacherRules   []TeacherRule

	// FallbackProgram receives teacher-bucketed files that match no rule and
	// sit in no recognisable program folder.
	FallbackProgram string

	// Workers bounds how many schools are read concurrently. Zero means 4.
	Workers int
}

// DefaultConfig returns the layout used by the recruitment exports.
func DefaultConfig(root string) Config {
	return Config{
		Root:           root,
		Programs:       []string{"Band", "Choir", "Dance", "Theatre"},
		ExcludeDirs:    []string{".git", ".agent", "recruitment_dashboard"},
		TeacherSchools: []string{"March Middle School"},
		TeacherRules: []TeacherRule{
			{Match: []string{"Gray"}, Program: "Band"},
			{Match: []string{"Mosley"}, Program: "Choir"},
			{Match: []string{"Delgado", "Pelagio"}, Program: "Dance"},
		},
		FallbackProgram: "Theatre",
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GENERATOR
// ══════════════════════════════════════════════════════════════════════════════

// Document is the generated dataset file.
type Document struct {
	Metadata enrollment.Metadata `json:"metadata"`
	Schools  enrollment.Dataset  `json:"schools"`
}

// Generator walks the export tree and produces a Document.
type Generator struct {
	cfg Config
	log *logger.Logger
}

// NewGenerator creates a generator.
func NewGenerator(cfg Config, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{cfg: cfg, log: log.With(logger.Component("ingest"))}
}

func (g *Generator) workers() int {
	if g.cfg.Workers > 0 {
		return g.cfg.Workers
	}
	return 4
}

// Build reads every school under Root.
func (g *Generator) Build(ctx context.Context) (*Document, error) {
	entries, err := os.ReadDir(g.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("read root %s: %w", g.cfg.Root, err)
	}

	start := time.Now()
	ds := make(enrollment.Dataset)
	var mu sync.Mutex

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers())

	for _, e := range entries {
		if !e.IsDir() || contains(g.cfg.ExcludeDirs, e.Name()) {
			continue
		}

		school := e.Name()
		schoolDir := filepath.Join(g.cfg.Root, school)
		if !hasSubdir(schoolDir) {
			continue
		}

		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := g.log.With(logger.School(school))
			log.Info("processing school")

			var programs enrollment.School
			if contains(g.cfg.TeacherSchools, school) {
				programs = g.buildByTeacher(schoolDir, log)
			} else {
				programs = g.buildByFolder(schoolDir, log)
			}

			mu.Lock()
			ds[school] = programs
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	g.log.Info("dataset generated",
		logger.Int("schools", len(ds)),
		logger.Latency(time.Since(start)),
	)

	return &Document{
		Metadata: enrollment.Metadata{GeneratedAt: timeutil.FormatDateTimeStr(timeutil.Now())},
		Schools:  ds,
	}, nil
}

// WriteFile builds the dataset and writes it as indented JSON.
func (g *Generator) WriteFile(ctx context.Context, path string) (*Document, error) {
	doc, err := g.Build(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("replace dataset: %w", err)
	}

	g.log.Info("dataset written", logger.String("path", path), logger.Int("bytes", len(data)))
	return doc, nil
}

func (g *Generator) buildByFolder(schoolDir string, log *logger.Logger) enrollment.School {
	programs := make(enrollment.School)
	for _, program := range g.cfg.Programs {
		files := rosterFiles(filepath.Join(schoolDir, program))
		if len(files) == 0 {
			continue
		}
		log.Debug("processing program", logger.Program(program), logger.Int("files", len(files)))
		programs[program] = BuildProgram(files, log.With(logger.Program(program)))
	}
	return programs
}

func (g *Generator) buildByTeacher(schoolDir string, log *logger.Logger) enrollment.School {
	buckets := make(map[string][]string)
	for _, folder := range g.cfg.Programs {
		for _, f := range rosterFiles(filepath.Join(schoolDir, folder)) {
			info, err := ReadHeaderInfo(f)
			if err != nil {
				log.Warn("cannot read roster header", logger.String("file", f), logger.Err(err))
			}
			program := g.bucketFor(info.Teacher, folder)
			buckets[program] = append(buckets[program], f)
		}
	}

	programs := make(enrollment.School)
	for program, files := range buckets {
		log.Debug("processing program by teacher", logger.Program(program), logger.Int("files", len(files)))
		programs[program] = BuildProgram(files, log.With(logger.Program(program)))
	}
	return programs
}

// bucketFor picks a program by teacher name, then by folder name.
func (g *Generator) bucketFor(teacher, folder string) string {
	for _, rule := range g.cfg.TeacherRules {
		for _, m := range rule.Match {
			if strings.Contains(teacher, m) {
				return rule.Program
			}
		}
	}
	for _, p := range g.cfg.Programs {
		if p != g.cfg.FallbackProgram && strings.Contains(folder, p) {
			return p
		}
	}
	return g.cfg.FallbackProgram
}

// rosterFiles lists *.xlsx files in dir, skipping Office lock files.
func rosterFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return nil
	}
	files := matches[:0]
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), "~$") {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files
}

func hasSubdir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
