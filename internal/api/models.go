package api

// User is the profile returned on login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// AuthTokens is the login payload.
type AuthTokens struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// RegisterRequest is the register body.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
}

// LoginRequest is the login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SurveyInput is the create-survey body.
type SurveyInput struct {
	Latitude          float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude         float64  `json:"longitude" validate:"gte=-180,lte=180"`
	PlotArea          float64  `json:"plotArea" validate:"gt=0"`
	SoilType          string   `json:"soilType" validate:"required"`
	Slope             float64  `json:"slope"`
	Elevation         float64  `json:"elevation"`
	WaterTableDepth   float64  `json:"waterTableDepth" validate:"gte=0"`
	SeismicZone       string   `json:"seismicZone" validate:"required"`
	FloodRisk         string   `json:"floodRisk" validate:"required"`
	NearbyWaterBodies bool     `json:"nearbyWaterBodies"`
	WaterBodyDistance *float64 `json:"waterBodyDistance" validate:"omitempty,gte=0"`
	AverageRainfall   *float64 `json:"averageRainfall" validate:"omitempty,gte=0"`
}

// Survey is a land survey record owned by the service.
type Survey struct {
	ID string `json:"id"`
	SurveyInput
	CreatedAt string `json:"createdAt,omitempty"`
}

// BuildingRequest is the create-building body.
type BuildingRequest struct {
	LandSurveyID      string  `json:"landSurveyId" validate:"required"`
	BuildingType      string  `json:"buildingType" validate:"required"`
	TotalFloors       int     `json:"totalFloors" validate:"gte=1"`
	FloorHeight       float64 `json:"floorHeight" validate:"gt=0"`
	TotalHeight       float64 `json:"totalHeight" validate:"gt=0"`
	BuiltUpArea       float64 `json:"builtUpArea" validate:"gt=0"`
	Orientation       string  `json:"orientation" validate:"required"`
	StructuralSystem  string  `json:"structuralSystem" validate:"required"`
	BasementFloors    int     `json:"basementFloors" validate:"gte=0"`
	ParkingFloors     int     `json:"parkingFloors" validate:"gte=0"`
	ExpectedOccupancy *int    `json:"expectedOccupancy" validate:"omitempty,gte=0"`
}

// BuildingInput is a building record tied to one survey.
type BuildingInput struct {
	ID string `json:"id"`
	BuildingRequest
	CreatedAt string `json:"createdAt,omitempty"`
}

// WindRequest is the add-wind body.
type WindRequest struct {
	BuildingInputID  string  `json:"buildingInputId" validate:"required"`
	WindDirection    float64 `json:"windDirection" validate:"gte=0,lte=360"`
	AverageWindSpeed float64 `json:"averageWindSpeed" validate:"gte=0"`
	PeakGustSpeed    float64 `json:"peakGustSpeed" validate:"gte=0"`
	TerrainRoughness string  `json:"terrainRoughness" validate:"required"`
}

// WindRecord is the stored wind data for a building.
type WindRecord struct {
	ID string `json:"id,omitempty"`
	WindRequest
}

// DisasterReport is the server-computed load and hazard analysis.
type DisasterReport struct {
	ID                    string  `json:"id,omitempty"`
	BuildingInputID       string  `json:"buildingInputId,omitempty"`
	DeadLoad              float64 `json:"deadLoad"`
	LiveLoad              float64 `json:"liveLoad"`
	WindLoad              float64 `json:"windLoad"`
	SeismicLoad           float64 `json:"seismicLoad"`
	TotalLoad             float64 `json:"totalLoad"`
	HeightCategory        string  `json:"heightCategory"`
	RecommendedFoundation string  `json:"recommendedFoundation"`
	FoundationDepth       float64 `json:"foundationDepth"`
	ColumnSpacing         float64 `json:"columnSpacing"`
	ShearWallRequired     bool    `json:"shearWallRequired"`
	BeamSizing            string  `json:"beamSizing"`
	EarthquakeSafetyScore float64 `json:"earthquakeSafetyScore"`
	BaseShear             float64 `json:"baseShear"`
	SoftStoryDetected     bool    `json:"softStoryDetected"`
	MinimumPlinthHeight   float64 `json:"minimumPlinthHeight"`
	DrainageSlope         float64 `json:"drainageSlope"`
	BasementFeasible      bool    `json:"basementFeasible"`
	VortexSheddingRisk    string  `json:"vortexSheddingRisk"`
	HeightToWidthRatio    float64 `json:"heightToWidthRatio"`
	ShapeOptimization     string  `json:"shapeOptimization"`
	CreatedAt             string  `json:"createdAt"`
}

// VastuViolation is one detected rule violation.
type VastuViolation struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Severity    string `json:"severity"`
}

// VastuCorrection is one suggested remedy.
type VastuCorrection struct {
	Violation string `json:"violation"`
	Solution  string `json:"solution"`
	Priority  string `json:"priority"`
}

// VastuReport is the server-computed Vastu compliance analysis.
type VastuReport struct {
	ID                     string            `json:"id,omitempty"`
	BuildingInputID        string            `json:"buildingInputId,omitempty"`
	VastuComplianceScore   float64           `json:"vastuComplianceScore"`
	OverallCompliance      string            `json:"overallCompliance"`
	EntranceDirection      string            `json:"entranceDirection"`
	EntranceSuitability    string            `json:"entranceSuitability"`
	KitchenZoneCompliance  bool              `json:"kitchenZoneCompliance"`
	BedroomZoneCompliance  bool              `json:"bedroomZoneCompliance"`
	StaircaseCompliance    bool              `json:"staircaseCompliance"`
	WaterTankDirection     string            `json:"waterTankDirection"`
	BorewellDirection      string            `json:"borewellDirection"`
	WindVastuCompatibility string            `json:"windVastuCompatibility"`
	Violations             []VastuViolation  `json:"violations"`
	Corrections            []VastuCorrection `json:"corrections"`
	CreatedAt              string            `json:"createdAt"`
}

// Location is a lat/lng pair as summarised by the final report.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SurveySummary condenses the survey in the final report.
type SurveySummary struct {
	Location    Location `json:"location"`
	PlotArea    float64  `json:"plotArea"`
	SoilType    string   `json:"soilType"`
	SeismicZone string   `json:"seismicZone"`
	FloodRisk   string   `json:"floodRisk"`
}

type EarthquakeRisk struct {
	Zone        string  `json:"zone"`
	SafetyScore float64 `json:"safetyScore"`
	BaseShear   float64 `json:"baseShear"`
}

type FloodRisk struct {
	Level            string  `json:"level"`
	PlinthHeight     float64 `json:"plinthHeight"`
	BasementFeasible bool    `json:"basementFeasible"`
}

type WindRisk struct {
	VortexShedding     string  `json:"vortexShedding"`
	HeightToWidthRatio float64 `json:"heightToWidthRatio"`
}

// RiskAnalysis groups the per-hazard summaries.
type RiskAnalysis struct {
	EarthquakeRisk EarthquakeRisk `json:"earthquakeRisk"`
	FloodRisk      FloodRisk      `json:"floodRisk"`
	WindRisk       WindRisk       `json:"windRisk"`
}

// Recommendations are the final report's advice lists.
type Recommendations struct {
	Structural []string `json:"structural"`
	Disaster   []string `json:"disaster"`
	Vastu      []string `json:"vastu"`
	General    []string `json:"general"`
}

// FinalReport is the composite report.
type FinalReport struct {
	ID                   string          `json:"id,omitempty"`
	BuildingInputID      string          `json:"buildingInputId,omitempty"`
	OverallSafetyScore   float64         `json:"overallSafetyScore"`
	CostEfficiencyScore  float64         `json:"costEfficiencyScore"`
	SustainabilityScore  float64         `json:"sustainabilityScore"`
	VastuScore           float64         `json:"vastuScore"`
	ReportStatus         string          `json:"reportStatus"`
	SurveySummary        SurveySummary   `json:"surveySummary"`
	RiskAnalysis         RiskAnalysis    `json:"riskAnalysis"`
	FinalRecommendations Recommendations `json:"finalRecommendations"`
	GeneratedAt          string          `json:"generatedAt"`
}
