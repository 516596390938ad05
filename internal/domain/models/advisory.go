package models

// Recommendation sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// CropRecommendationRequest describes the farm the suggestions are for.
type CropRecommendationRequest struct {
	City        string      `json:"city"`
	State       string      `json:"state"`
	SoilType    string      `json:"soilType"`
	Season      string      `json:"season"`
	FarmingType FarmingType `json:"farmingType"`
	LandSize    float64     `json:"landSize"`
}

// CropRecommendation is one suggested crop.
type CropRecommendation struct {
	Name          string `json:"name" yaml:"name"`
	Season        string `json:"season" yaml:"season"`
	Duration      int    `json:"duration" yaml:"duration"`
	ExpectedYield string `json:"expectedYield" yaml:"expectedYield"`
	WaterNeed     string `json:"waterNeed" yaml:"waterNeed"`
	Reason        string `json:"reason" yaml:"reason"`
	Profitability string `json:"profitability" yaml:"profitability"`
}

// CropRecommendations carries the list and where it came from.
type CropRecommendations struct {
	Source          string               `json:"source"`
	Recommendations []CropRecommendation `json:"recommendations"`
}

// AskRequest is a free-form farming question.
type AskRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// AskResponse wraps the model answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

// PesticideRequest asks for treatments for a crop problem.
type PesticideRequest struct {
	CropName    string `json:"cropName"`
	DiseaseName string `json:"diseaseName"`
}

// PesticideRecommendation is one treatment product.
type PesticideRecommendation struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Dosage      string `json:"dosage"`
	Application string `json:"application"`
	Precautions string `json:"precautions"`
}

// PesticideRecommendations carries the list and where it came from.
type PesticideRecommendations struct {
	Source  string                    `json:"source"`
	Results []PesticideRecommendation `json:"results"`
}
