package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/core/ports"
)

// MLFitter is the trainable side of the ML tier; satisfied by
// classifier.MLClassifier.
type MLFitter interface {
	Fit(examples []domain.TrainingExample) error
}

// TrainUseCase re-fits the ML tier from the training source. The model
// swap is atomic inside the classifier, so in-flight classifications
// keep the previous snapshot.
type TrainUseCase struct {
	source ports.TrainingSource
	model  MLFitter
	logger *slog.Logger
}

func NewTrainUseCase(source ports.TrainingSource, model MLFitter, logger *slog.Logger) *TrainUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrainUseCase{source: source, model: model, logger: logger}
}

func (uc *TrainUseCase) Retrain(ctx context.Context) error {
	examples, err := uc.source.TrainingExamples(ctx)
	if err != nil {
		return fmt.Errorf("load training examples: %w", err)
	}

	if err := uc.model.Fit(examples); err != nil {
		return fmt.Errorf("fit ml classifier: %w", err)
	}

	uc.logger.Info("ml_model_retrained", "examples", len(examples))
	return nil
}
