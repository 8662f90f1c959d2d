package analyzer

import (
	"math"

	"github.com/anime-shed/photo-scorer-go/internal/logger"
	"github.com/anime-shed/photo-scorer-go/pkg/geometry"
	"github.com/anime-shed/photo-scorer-go/pkg/models"
)

// neutralScore is reported when there is no evidence either way
const neutralScore = 5.0

// Ranges for the signals detections cannot measure
const (
	leadingLinesMin = 6.0
	leadingLinesMax = 9.0
	depthMin        = 7.0
	depthMax        = 9.0
)

type compositionScorer struct {
	thirdsTolerance float64
}

// NewCompositionScorer creates a scorer using the given thirds tolerance.
// Non-positive tolerances fall back to geometry.DefaultThirdsTolerance.
func NewCompositionScorer(thirdsTolerance float64) CompositionScorer {
	if thirdsTolerance <= 0 {
		thirdsTolerance = geometry.DefaultThirdsTolerance
	}
	return &compositionScorer{thirdsTolerance: thirdsTolerance}
}

// UsableDetections drops boxes with non-positive width or height
func UsableDetections(detections []models.Detection) []models.Detection {
	usable := make([]models.Detection, 0, len(detections))
	for _, d := range detections {
		if geometry.Degenerate(d.Box) {
			logger.WithComponent("composition").WithField("label", d.Label).
				Debug("Skipping detection with degenerate bounding box")
			continue
		}
		usable = append(usable, d)
	}
	return usable
}

// Score derives the six composition scores. leadingLines and depthOfField
// are drawn from rnd in that order, with or without detections.
func (cs *compositionScorer) Score(detections []models.Detection, width, height int, rnd RandomSource) models.CompositionScores {
	boxes := make([]models.BoundingBox, 0, len(detections))
	for _, d := range detections {
		if !geometry.Degenerate(d.Box) {
			boxes = append(boxes, d.Box)
		}
	}
	w, h := float64(width), float64(height)

	scores := models.CompositionScores{
		LeadingLines: jitter(rnd, leadingLinesMin, leadingLinesMax),
		DepthOfField: jitter(rnd, depthMin, depthMax),
	}

	if len(boxes) == 0 {
		scores.ElementArrangement = neutralScore
		scores.RuleOfThirds = neutralScore
		scores.Balance = neutralScore
		scores.Symmetry = neutralScore
		return scores
	}

	scores.ElementArrangement = elementArrangement(boxes)
	scores.RuleOfThirds = cs.ruleOfThirds(boxes, w, h)
	scores.Balance = balance(boxes, w, h)
	scores.Symmetry = symmetry(boxes, w, h)
	return scores
}

func (cs *compositionScorer) ruleOfThirds(boxes []models.BoundingBox, w, h float64) float64 {
	score := neutralScore
	for _, b := range boxes {
		cx, cy := geometry.Center(b)
		if geometry.NearThirdsLine(cx, cy, w, h, cs.thirdsTolerance) {
			score += 3
		}
	}
	return math.Min(maxScore, score)
}

// balance weighs box areas left/right and top/bottom of the image midpoints.
// Boxes are clipped to the image first, so areas stay finite.
func balance(boxes []models.BoundingBox, w, h float64) float64 {
	var left, right, top, bottom float64
	for _, box := range boxes {
		b := geometry.Clip(box, w, h)
		if geometry.Degenerate(b) {
			continue
		}
		area := geometry.Area(b)
		cx, cy := geometry.Center(b)
		if cx < w/2 {
			left += area
		} else {
			right += area
		}
		if cy < h/2 {
			top += area
		} else {
			bottom += area
		}
	}

	if left+right == 0 {
		return neutralScore
	}

	horizontal := 1 - math.Abs(left-right)/(left+right+1)
	vertical := 1 - math.Abs(top-bottom)/(top+bottom+1)
	return clampScore((horizontal + vertical) * 5)
}

func elementArrangement(boxes []models.BoundingBox) float64 {
	if len(boxes) == 1 {
		return 8
	}

	overlaps := 0
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			if geometry.Overlaps(boxes[i], boxes[j]) {
				overlaps++
			}
		}
	}
	return math.Max(3, 9-float64(overlaps))
}

// symmetry adds 2 for every ordered pair whose second box sits at the first
// one's mirror position with a similar top edge and similar size.
func symmetry(boxes []models.BoundingBox, w, h float64) float64 {
	score := 0.0
	for i, a := range boxes {
		acx, _ := geometry.Center(a)
		mirror := geometry.MirrorX(acx, w)
		for j, b := range boxes {
			if i == j {
				continue
			}
			bcx, _ := geometry.Center(b)
			if math.Abs(bcx-mirror) < w*0.1 &&
				math.Abs(b.Y-a.Y) < h*0.1 &&
				math.Abs(b.W-a.W) < a.W*0.3 &&
				math.Abs(b.H-a.H) < a.H*0.3 {
				score += 2
			}
		}
	}
	return math.Min(maxScore, neutralScore+score)
}
