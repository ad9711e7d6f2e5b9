package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"timed-quiz/internal/domain"
)

type questionBank struct {
	Categories []domain.Category `yaml:"categories"`
}

// CategoryLoader reads question sets from a YAML (or JSON) file on every load;
// put a caching repository in front of it.
type CategoryLoader struct {
	path string
}

func NewCategoryLoader(path string) *CategoryLoader {
	return &CategoryLoader{path: path}
}

func (l *CategoryLoader) LoadCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	categories, err := l.LoadCategories(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	for _, c := range categories {
		if c.ID == categoryID {
			return c, nil
		}
	}
	return domain.Category{}, fmt.Errorf("load category %s: %w", categoryID, domain.ErrCategoryNotFound)
}

func (l *CategoryLoader) LoadCategories(_ context.Context) ([]domain.Category, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return ParseCategories(f)
}

// ParseCategories decodes a question bank document. Entries without an ID are rejected,
// and questions without an ID are numbered from 1 in file order.
func ParseCategories(r io.Reader) ([]domain.Category, error) {
	var bank questionBank
	if err := yaml.NewDecoder(r).Decode(&bank); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	for i := range bank.Categories {
		c := &bank.Categories[i]
		if c.ID == "" {
			return nil, fmt.Errorf("category #%d has no id", i+1)
		}
		for j := range c.Questions {
			if c.Questions[j].ID == 0 {
				c.Questions[j].ID = j + 1
			}
		}
	}
	return bank.Categories, nil
}
