package models

import "math"

// BoundingBox is an axis-aligned rectangle in pixel coordinates
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Detection is one object reported by the external detector
type Detection struct {
	Box        BoundingBox `json:"bbox"`
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
}

// Classification is one label reported by the external image classifier
type Classification struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// ExposureHint is an optional exposure time in seconds. Nil means the
// metadata reader had nothing to offer, which is not an error.
type ExposureHint *float64

// TechnicalScores holds the nine pixel-derived scores, each in [1,10]
type TechnicalScores struct {
	Sharpness    float64 `json:"sharpness"`
	Focus        float64 `json:"focus"`
	Lighting     float64 `json:"lighting"`
	Exposure     float64 `json:"exposure"`
	ColorBalance float64 `json:"colorBalance"`
	Resolution   float64 `json:"resolution"`
	ImageQuality float64 `json:"imageQuality"`
	Noise        float64 `json:"noise"`
	Artifacts    float64 `json:"artifacts"`
}

// Values returns the scores in declaration order
func (t TechnicalScores) Values() []float64 {
	return []float64{
		t.Sharpness, t.Focus, t.Lighting, t.Exposure, t.ColorBalance,
		t.Resolution, t.ImageQuality, t.Noise, t.Artifacts,
	}
}

// CompositionScores holds the six geometry-derived scores, each in [1,10]
type CompositionScores struct {
	ElementArrangement float64 `json:"elementArrangement"`
	RuleOfThirds       float64 `json:"ruleOfThirds"`
	LeadingLines       float64 `json:"leadingLines"`
	Balance            float64 `json:"balance"`
	Symmetry           float64 `json:"symmetry"`
	DepthOfField       float64 `json:"depthOfField"`
}

// Values returns the scores in declaration order
func (c CompositionScores) Values() []float64 {
	return []float64{
		c.ElementArrangement, c.RuleOfThirds, c.LeadingLines,
		c.Balance, c.Symmetry, c.DepthOfField,
	}
}

// AnalysisResult combines both score families with the overall score
type AnalysisResult struct {
	Technical    TechnicalScores   `json:"technical"`
	Composition  CompositionScores `json:"composition"`
	OverallScore float64           `json:"overallScore"`
}

// DisplayOverallScore rounds the overall score to one decimal place.
// OverallScore itself keeps full precision.
func (r AnalysisResult) DisplayOverallScore() float64 {
	return math.Round(r.OverallScore*10) / 10
}

// ContentDescription is the textual summary shown next to the scores
type ContentDescription struct {
	MainSubject string `json:"mainSubject"`
	Background  string `json:"background"`
	Environment string `json:"environment"`
	Colors      string `json:"colors"`
	Tones       string `json:"tones"`
	Mood        string `json:"mood"`
	Atmosphere  string `json:"atmosphere"`
	Story       string `json:"story"`
}

// ImprovementSuggestions groups advice by area
type ImprovementSuggestions struct {
	Technical     []string `json:"technical"`
	Compositional []string `json:"compositional"`
	Presentation  []string `json:"presentation"`
}
