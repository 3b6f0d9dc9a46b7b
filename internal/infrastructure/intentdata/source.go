package intentdata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rudradey/campus-companion/internal/core/classifier"
	"github.com/rudradey/campus-companion/internal/core/domain"
)

// Source loads the intent keyword table and the ML training corpus from
// YAML files, falling back to the built-in data when a path is empty or
// the file is absent. Operators override the files to tune the cascade
// without a rebuild.
type Source struct {
	trainingPath string
	keywordPath  string
}

func NewSource(trainingPath, keywordPath string) *Source {
	return &Source{
		trainingPath: trainingPath,
		keywordPath:  keywordPath,
	}
}

type trainingFile struct {
	Examples []domain.TrainingExample `yaml:"examples"`
}

type keywordFile struct {
	Groups []classifier.KeywordGroup `yaml:"groups"`
}

// TrainingExamples implements ports.TrainingSource.
func (s *Source) TrainingExamples(ctx context.Context) ([]domain.TrainingExample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, ok, err := readOptional(s.trainingPath)
	if err != nil {
		return nil, fmt.Errorf("read training data: %w", err)
	}
	if !ok {
		return DefaultTrainingExamples(), nil
	}

	var file trainingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse training data", err)
	}
	if len(file.Examples) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse training data", errors.New("no examples"))
	}
	for i, example := range file.Examples {
		label, ok := domain.ParseIntentLabel(string(example.Label))
		if !ok {
			return nil, domain.WrapError(domain.ErrUnrecognizedLabel, "parse training data",
				fmt.Errorf("example %d: label %q", i, example.Label))
		}
		file.Examples[i].Label = label
	}
	return file.Examples, nil
}

// KeywordGroups loads the rule table, preserving file order since group
// order is the priority order.
func (s *Source) KeywordGroups() ([]classifier.KeywordGroup, error) {
	data, ok, err := readOptional(s.keywordPath)
	if err != nil {
		return nil, fmt.Errorf("read keyword data: %w", err)
	}
	if !ok {
		return classifier.DefaultKeywordGroups(), nil
	}

	var file keywordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse keyword data", err)
	}
	if len(file.Groups) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse keyword data", errors.New("no groups"))
	}
	for i, group := range file.Groups {
		label, ok := domain.ParseIntentLabel(string(group.Intent))
		if !ok {
			return nil, domain.WrapError(domain.ErrUnrecognizedLabel, "parse keyword data",
				fmt.Errorf("group %d: intent %q", i, group.Intent))
		}
		file.Groups[i].Intent = label
		if group.Weight <= 0 || group.Weight > 1 {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse keyword data",
				fmt.Errorf("group %d: weight %v out of range", i, group.Weight))
		}
		if len(group.Terms) == 0 {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse keyword data",
				fmt.Errorf("group %d: no terms", i))
		}
	}
	return file.Groups, nil
}

func readOptional(path string) ([]byte, bool, error) {
	if path == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
