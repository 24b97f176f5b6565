package catalog

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/easysks/easysks/internal/study"
)

// Source is one catalog location: a local directory or a git URL, with an
// optional subdirectory holding the catalog files.
type Source struct {
	URL    string
	Ref    string
	Subdir string
}

// Report summarizes one seeding run.
type Report struct {
	Sources int
	Files   int
	Cards   int
	Errors  []error
}

// Seeder reconciles catalog sources into the card store.
type Seeder struct {
	uow      study.UnitOfWork
	log      *zap.Logger
	cacheDir string
}

// NewSeeder builds a seeder. cacheDir holds the clones of git sources.
func NewSeeder(uow study.UnitOfWork, cacheDir string, log *zap.Logger) *Seeder {
	return &Seeder{
		uow:      uow,
		log:      log.With(zap.String("component", "catalog")),
		cacheDir: cacheDir,
	}
}

// Seed processes every source. A failing source is reported and skipped;
// the remaining sources still run. Each source commits in its own
// transaction, so one broken catalog file never rolls back another source.
func (s *Seeder) Seed(ctx context.Context, sources []Source) Report {
	report := Report{Sources: len(sources)}

	for _, src := range sources {
		files, cards, err := s.seedSource(ctx, src)
		report.Files += files
		report.Cards += cards
		if err != nil {
			s.log.Error("source failed", zap.String("url", src.URL), zap.Error(err))
			report.Errors = append(report.Errors, fmt.Errorf("source %s: %w", src.URL, err))
			continue
		}
		s.log.Info("source seeded",
			zap.String("url", src.URL), zap.Int("files", files), zap.Int("cards", cards))
	}
	return report
}

func (s *Seeder) seedSource(ctx context.Context, src Source) (files, cards int, err error) {
	dir := src.URL
	if isGitURL(src.URL) {
		dir = s.clonePath(src.URL)
		if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
			return 0, 0, fmt.Errorf("create cache dir: %w", err)
		}
		if err := syncRepo(src.URL, src.Ref, dir, s.log); err != nil {
			return 0, 0, err
		}
	}
	if src.Subdir != "" {
		dir = filepath.Join(dir, src.Subdir)
	}

	paths, err := catalogFiles(dir)
	if err != nil {
		return 0, 0, err
	}

	err = s.uow.Run(ctx, func(ctx context.Context, st study.Stores) error {
		for _, path := range paths {
			parsed, err := ParseFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			for _, card := range parsed {
				if err := st.Cards.Save(ctx, card); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			files++
			cards += len(parsed)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return files, cards, nil
}

// catalogFiles collects the .json files under dir in walk order, which
// fixes the enumeration order of newly seeded cards.
func catalogFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}

// clonePath maps a git URL to a stable directory under the cache dir.
func (s *Seeder) clonePath(rawURL string) string {
	name := "repo"
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = strings.TrimSuffix(filepath.Base(u.Path), ".git")
	}
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s-%x", name, sum[:4]))
}

func isGitURL(raw string) bool {
	return strings.Contains(raw, "://") || strings.HasSuffix(raw, ".git")
}
