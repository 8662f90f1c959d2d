package models

// AnalyzeURLRequest asks the service to fetch and score a remote photo.
// Detections and classifications come from external models.
type AnalyzeURLRequest struct {
	URL             string           `json:"url" binding:"required"`
	Detections      []Detection      `json:"detections,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
	// ExposureTime overrides whatever the EXIF block says, in seconds.
	ExposureTime *float64 `json:"exposure_time,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ImageInfo describes the decoded source
type ImageInfo struct {
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Format       string   `json:"format"`
	Megapixels   float64  `json:"megapixels"`
	ExposureTime *float64 `json:"exposure_time,omitempty"`
}

// AnalysisResponse is the full record returned to presentation clients
type AnalysisResponse struct {
	ID                string                 `json:"id"`
	FileName          string                 `json:"file_name,omitempty"`
	ImageURL          string                 `json:"image_url,omitempty"`
	AnalyzedAt        string                 `json:"analyzed_at"`
	ProcessingTimeSec float64                `json:"processing_time_sec"`
	Image             ImageInfo              `json:"image"`
	Technical         TechnicalScores        `json:"technical"`
	Composition       CompositionScores      `json:"composition"`
	OverallScore      float64                `json:"overall_score"`
	DisplayScore      float64                `json:"display_score"`
	TechnicalFallback bool                   `json:"technical_fallback,omitempty"`
	DetectionsUsed    int                    `json:"detections_used"`
	Content           ContentDescription     `json:"content"`
	Improvements      ImprovementSuggestions `json:"improvements"`
}
