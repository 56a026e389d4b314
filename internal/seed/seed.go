// Package seed loads content fixtures into an empty store and provisions the
// first admin account.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

//go:embed default.yaml
var defaultFixtures []byte

// AdminFixture is the optional admin account created by the seeder.
type AdminFixture struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Fixtures is a parsed fixture file. Content is keyed by kind route name
// (e.g. "products", "case-studies"); records use the API's JSON field names.
type Fixtures struct {
	Admin   *AdminFixture               `yaml:"admin"`
	Content map[string][]map[string]any `yaml:",inline"`
}

// Load parses the fixture file at path, or the embedded defaults when path is empty.
func Load(path string) (*Fixtures, error) {
	raw := defaultFixtures
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

// Parse decodes YAML fixtures.
func Parse(raw []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &fx, nil
}

// KindSeeder inserts fixture records of one content kind.
type KindSeeder interface {
	Kind() domain.ContentKind
	// Empty reports whether the kind has no records yet.
	Empty(ctx context.Context) (bool, error)
	Insert(ctx context.Context, actor domain.Actor, records []map[string]any) (int, error)
}

// Kind adapts a content service to a KindSeeder.
func Kind[T any](svc ports.ContentService[T]) KindSeeder {
	return contentSeeder[T]{svc: svc}
}

type contentSeeder[T any] struct {
	svc ports.ContentService[T]
}

func (s contentSeeder[T]) Kind() domain.ContentKind { return s.svc.Kind() }

func (s contentSeeder[T]) Empty(ctx context.Context) (bool, error) {
	res, err := s.svc.List(ctx, ports.ListInput{Filter: ports.ListFilter{Limit: 1}})
	if err != nil {
		return false, err
	}
	return len(res.Items) == 0, nil
}

func (s contentSeeder[T]) Insert(ctx context.Context, actor domain.Actor, records []map[string]any) (int, error) {
	for i, fields := range records {
		rec, err := decodeRecord[T](fields)
		if err != nil {
			return i, fmt.Errorf("%s[%d]: %w", s.Kind(), i, err)
		}
		if _, err := s.svc.Create(ctx, actor, rec); err != nil {
			return i, fmt.Errorf("%s[%d]: %w", s.Kind(), i, err)
		}
	}
	return len(records), nil
}

// decodeRecord converts a YAML mapping into T through its JSON tags.
// Records are active unless the fixture says otherwise.
func decodeRecord[T any](fields map[string]any) (T, error) {
	var rec T
	if m := domain.MetaOf(&rec); m != nil {
		m.IsActive = true
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, domain.NewValidationError("invalid record: %v", err)
	}
	return rec, nil
}

// Report summarises a seeding run.
type Report struct {
	Inserted     map[domain.ContentKind]int
	Skipped      []domain.ContentKind
	AdminCreated bool
}

// Seeder applies fixtures.
type Seeder struct {
	auth  ports.AuthService
	kinds map[domain.ContentKind]KindSeeder
	log   zerolog.Logger
}

func New(auth ports.AuthService, log zerolog.Logger, kinds ...KindSeeder) *Seeder {
	s := &Seeder{auth: auth, kinds: make(map[domain.ContentKind]KindSeeder, len(kinds)), log: log}
	for _, k := range kinds {
		s.kinds[k.Kind()] = k
	}
	return s
}

// Run provisions the admin when absent and inserts the fixtures of every kind
// that has no records yet. Kinds are processed in name order.
func (s *Seeder) Run(ctx context.Context, fx *Fixtures) (*Report, error) {
	report := &Report{Inserted: make(map[domain.ContentKind]int)}

	if fx.Admin != nil {
		_, err := s.auth.Provision(ctx, fx.Admin.Email, fx.Admin.Name, fx.Admin.Password)
		switch {
		case err == nil:
			report.AdminCreated = true
		case errors.Is(err, domain.ErrUserExists):
			s.log.Info().Str("email", fx.Admin.Email).Msg("admin already exists, skipping")
		default:
			return report, fmt.Errorf("provision admin: %w", err)
		}
	}

	names := make([]string, 0, len(fx.Content))
	for name := range fx.Content {
		names = append(names, name)
	}
	sort.Strings(names)

	actor := domain.Actor{Email: "seed"}
	for _, name := range names {
		kind := domain.ContentKind(name)
		seeder, ok := s.kinds[kind]
		if !ok {
			return report, fmt.Errorf("unknown content kind %q", name)
		}

		empty, err := seeder.Empty(ctx)
		if err != nil {
			return report, fmt.Errorf("check %s: %w", kind, err)
		}
		if !empty {
			report.Skipped = append(report.Skipped, kind)
			s.log.Info().Str("kind", name).Msg("kind already has records, skipping")
			continue
		}

		n, err := seeder.Insert(ctx, actor, fx.Content[name])
		report.Inserted[kind] = n
		if err != nil {
			return report, err
		}
		s.log.Info().Str("kind", name).Int("inserted", n).Msg("seeded")
	}
	return report, nil
}
