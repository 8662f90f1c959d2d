// Package advisor turns scores and external model outputs into the textual
// parts of an analysis: improvement suggestions and a content description.
package advisor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/anime-shed/photo-scorer-go/internal/analyzer"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

const (
	maxTechnical     = 4
	maxCompositional = 4
	maxPresentation  = 3

	// weakScore marks a score worth commenting on
	weakScore = 6.0
	// noisyScore is compared against the noise score as reported
	noisyScore = 7.0
	// clearSubject is the top classification probability above which the
	// subject counts as recognizable
	clearSubject = 0.7
	// confidentScene sets the mood wording
	confidentScene = 0.8

	// neutralSpread is the largest channel mean spread still read as neutral
	neutralSpread = 12.0
	// keyRatio is the share of dark or bright pixels that makes a low- or high-key image
	keyRatio = 0.5
	// contrastRatio is the share both ends need for a high-contrast image
	contrastRatio = 0.2
)

// Suggest derives improvement advice. topConfidence is the probability of
// the strongest classification, 0 when none was supplied.
func Suggest(technical models.TechnicalScores, composition models.CompositionScores, topConfidence float64) models.ImprovementSuggestions {
	var tech, comp, pres []string

	if technical.Sharpness < weakScore {
		tech = append(tech, "Image lacks sharpness - use a tripod or a faster shutter speed")
	}
	if technical.Lighting < weakScore {
		tech = append(tech, "Lighting is uneven - adjust exposure or add light to the scene")
	}
	if technical.ColorBalance < weakScore {
		tech = append(tech, "Colors show a cast - correct the white balance for more natural tones")
	}
	if technical.Noise > noisyScore {
		tech = append(tech, "Check for noise at full size - lower the ISO or apply noise reduction")
	}

	if composition.RuleOfThirds < weakScore {
		comp = append(comp, "Place the main subject along the rule-of-thirds lines")
	}
	if composition.Balance < weakScore {
		comp = append(comp, "The composition is unbalanced - redistribute the visual weight")
	}
	if composition.ElementArrangement < weakScore {
		comp = append(comp, "Simplify the composition with fewer overlapping elements")
	}

	if topConfidence < clearSubject {
		pres = append(pres, "Give the main subject a clearer focus so it is easier to recognize")
	}
	pres = append(pres,
		"Experiment with different angles for a more dynamic composition",
		"Consider post-processing to address the weaker areas",
	)

	if len(tech) == 0 {
		tech = append(tech, "Solid technical execution - well done")
	}
	if len(comp) == 0 {
		comp = append(comp, "The compositional structure is good")
	}

	return models.ImprovementSuggestions{
		Technical:     limit(tech, maxTechnical),
		Compositional: limit(comp, maxCompositional),
		Presentation:  limit(pres, maxPresentation),
	}
}

// TopClassification returns the most probable classification
func TopClassification(classifications []models.Classification) (models.Classification, bool) {
	if len(classifications) == 0 {
		return models.Classification{}, false
	}
	top := classifications[0]
	for _, c := range classifications[1:] {
		if c.Probability > top.Probability {
			top = c
		}
	}
	return top, true
}

// Describe summarizes what the external models reported about the photo.
// Colors and tones come from the pixel signals; zero signals (fallback
// scoring) leave them marked unavailable.
func Describe(classifications []models.Classification, detections []models.Detection, signals analyzer.Signals) models.ContentDescription {
	top, ok := TopClassification(classifications)
	subject := "unknown subject"
	if ok {
		subject = top.Label
	}

	desc := models.ContentDescription{
		MainSubject: fmt.Sprintf("Identified %q as the main subject with %.1f%% confidence", subject, top.Probability*100),
		Colors:      describeColors(signals),
		Tones:       describeTones(signals),
		Atmosphere:  fmt.Sprintf("Considered %d possible classifications for this photo", len(classifications)),
		Story:       fmt.Sprintf("The photo shows %s with %d main elements in the composition", subject, len(detections)),
	}

	if len(detections) > 1 {
		desc.Background = fmt.Sprintf("Detected %d objects in the scene: %s", len(detections), strings.Join(labels(detections), ", "))
	} else {
		desc.Background = "A simple composition with a focused subject"
	}

	if isOutdoor(classifications) {
		desc.Environment = "Classified as an outdoor scene"
	} else {
		desc.Environment = "Recognized as an indoor setting"
	}

	if top.Probability > confidentScene {
		desc.Mood = "High recognition confidence - a clear, clean composition"
	} else {
		desc.Mood = "A more complex scene that calls for closer inspection"
	}

	return desc
}

// describeColors names the dominant color cast from the channel means
func describeColors(sig analyzer.Signals) string {
	if sig.PixelCount == 0 {
		return "Color information unavailable"
	}

	r, g, b := sig.MeanR, sig.MeanG, sig.MeanB
	means := fmt.Sprintf("average RGB %.0f/%.0f/%.0f", r, g, b)
	if math.Max(r, math.Max(g, b))-math.Min(r, math.Min(g, b)) < neutralSpread {
		return "Neutral, balanced colors (" + means + ")"
	}

	switch {
	case r >= g && r >= b:
		return "Warm colors dominate with a red cast (" + means + ")"
	case g >= b:
		return "Green tones dominate the palette (" + means + ")"
	default:
		return "Cool colors dominate with a blue cast (" + means + ")"
	}
}

// describeTones classifies the tonal key from the brightness profile
func describeTones(sig analyzer.Signals) string {
	if sig.PixelCount == 0 {
		return "Tonal information unavailable"
	}

	p := sig.Brightness
	switch {
	case p.DarkRatio > keyRatio:
		return fmt.Sprintf("Low-key image: %.0f%% of pixels sit in the shadows", p.DarkRatio*100)
	case p.BrightRatio > keyRatio:
		return fmt.Sprintf("High-key image: %.0f%% of pixels sit in the highlights", p.BrightRatio*100)
	case p.DarkRatio >= contrastRatio && p.BrightRatio >= contrastRatio:
		return fmt.Sprintf("High contrast between shadows (%.0f%%) and highlights (%.0f%%)", p.DarkRatio*100, p.BrightRatio*100)
	default:
		return fmt.Sprintf("Balanced tonal range around mean brightness %.0f", p.Mean)
	}
}

func isOutdoor(classifications []models.Classification) bool {
	for _, c := range classifications {
		if strings.Contains(strings.ToLower(c.Label), "outdoor") {
			return true
		}
	}
	return false
}

// labels lists detection labels once each, most frequent first
func labels(detections []models.Detection) []string {
	counts := make(map[string]int)
	var order []string
	for _, d := range detections {
		label := d.Label
		if label == "" {
			label = "object"
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	out := make([]string, len(order))
	for i, label := range order {
		if n := counts[label]; n > 1 {
			out[i] = fmt.Sprintf("%s (x%d)", label, n)
		} else {
			out[i] = label
		}
	}
	return out
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
