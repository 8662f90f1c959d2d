package analyzer

import (
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// Aggregate combines both score families. The overall score is the mean of
// the two family means, so each family weighs the same regardless of size.
func Aggregate(technical models.TechnicalScores, composition models.CompositionScores) models.AnalysisResult {
	technicalMean := stat.Mean(technical.Values(), nil)
	compositionMean := stat.Mean(composition.Values(), nil)

	return models.AnalysisResult{
		Technical:    technical,
		Composition:  composition,
		OverallScore: (technicalMean + compositionMean) / 2,
	}
}
