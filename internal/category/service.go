package category

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cartola/internal/categorize"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	ListActive(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeactivateCategory(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]*Category, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	name, err := cleanName(params.Name)
	if err != nil {
		return nil, err
	}

	keywords, err := cleanKeywords(params.Keywords)
	if err != nil {
		return nil, err
	}

	c := &Category{
		Name:        name,
		Keywords:    keywords,
		Description: strings.TrimSpace(params.Description),
		Active:      true,
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if c.Name, err = cleanName(*params.Name); err != nil {
			return nil, err
		}
	}

	if params.Keywords != nil {
		if c.Keywords, err = cleanKeywords(params.Keywords); err != nil {
			return nil, err
		}
	}

	if params.Description != nil {
		c.Description = strings.TrimSpace(*params.Description)
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}

	return c, nil
}

// Deactivate removes a category from categorization without deleting it.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeactivateCategory(ctx, id)
}

// Dictionary returns the active custom categories as keyword rules.
func (s *Service) Dictionary(ctx context.Context) (categorize.Dictionary, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing custom categories: %w", err)
	}

	dict := make(categorize.Dictionary, 0, len(active))
	for _, c := range active {
		dict = append(dict, categorize.Rule{Category: c.Name, Keywords: slices.Clone(c.Keywords), Custom: true})
	}

	return dict, nil
}

// Engine builds a categorization engine over the predefined dictionary with
// the active custom categories merged in.
func (s *Service) Engine(ctx context.Context, opts ...categorize.Option) (*categorize.Engine, error) {
	dict, err := s.Dictionary(ctx)
	if err != nil {
		return nil, err
	}

	return categorize.New(append([]categorize.Option{categorize.WithCustom(dict)}, opts...)...), nil
}

// Rules summarizes every rule in effect, predefined first.
func (s *Service) Rules(ctx context.Context) ([]categorize.RuleSummary, error) {
	engine, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}

	return engine.Rules(), nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalid)
	}

	return name, nil
}

func cleanKeywords(keywords []string) ([]string, error) {
	out := make([]string, 0, len(keywords))

	for _, k := range keywords {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" || slices.Contains(out, k) {
			continue
		}

		out = append(out, k)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword is required", ErrInvalid)
	}

	return out, nil
}
