package forms

import (
	"github.com/jask/siteassess/internal/api"
)

// Field names shared by the parsers and the terminal forms.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"

	FieldLatitude          = "latitude"
	FieldLongitude         = "longitude"
	FieldPlotArea          = "plotArea"
	FieldSoilType          = "soilType"
	FieldSlope             = "slope"
	FieldElevation         = "elevation"
	FieldWaterTableDepth   = "waterTableDepth"
	FieldSeismicZone       = "seismicZone"
	FieldFloodRisk         = "floodRisk"
	FieldNearbyWaterBodies = "nearbyWaterBodies"
	FieldWaterBodyDistance = "waterBodyDistance"
	FieldAverageRainfall   = "averageRainfall"

	FieldLandSurveyID      = "landSurveyId"
	FieldBuildingType      = "buildingType"
	FieldTotalFloors       = "totalFloors"
	FieldFloorHeight       = "floorHeight"
	FieldTotalHeight       = "totalHeight"
	FieldBuiltUpArea       = "builtUpArea"
	FieldOrientation       = "orientation"
	FieldStructuralSystem  = "structuralSystem"
	FieldBasementFloors    = "basementFloors"
	FieldParkingFloors     = "parkingFloors"
	FieldExpectedOccupancy = "expectedOccupancy"

	FieldWindDirection    = "windDirection"
	FieldAverageWindSpeed = "averageWindSpeed"
	FieldPeakGustSpeed    = "peakGustSpeed"
	FieldTerrainRoughness = "terrainRoughness"
)

// Register builds a registration body. The role is snapped to a known role.
func Register(v Values) (api.RegisterRequest, error) {
	req := api.RegisterRequest{
		Email:    v.Get(FieldEmail),
		Password: v[FieldPassword],
		Name:     v.Get(FieldName),
		Role:     Snap(v[FieldRole], Roles),
	}
	return req, Validate(req, MsgFillAll)
}

// Login builds a login body.
func Login(v Values) (api.LoginRequest, error) {
	req := api.LoginRequest{
		Email:    v.Get(FieldEmail),
		Password: v[FieldPassword],
	}
	return req, Validate(req, MsgCredentials)
}

// Survey builds a create-survey body.
func Survey(v Values) (api.SurveyInput, error) {
	n := numbers{v: v}
	in := api.SurveyInput{
		Latitude:          n.float(FieldLatitude),
		Longitude:         n.float(FieldLongitude),
		PlotArea:          n.float(FieldPlotArea),
		SoilType:          Snap(v[FieldSoilType], SoilTypes),
		Slope:             n.float(FieldSlope),
		Elevation:         n.float(FieldElevation),
		WaterTableDepth:   n.float(FieldWaterTableDepth),
		SeismicZone:       Snap(v[FieldSeismicZone], SeismicZones),
		FloodRisk:         Snap(v[FieldFloodRisk], FloodRisks),
		NearbyWaterBodies: v.Get(FieldNearbyWaterBodies) == "true",
		WaterBodyDistance: optionalFloat(v[FieldWaterBodyDistance]),
		AverageRainfall:   optionalFloat(v[FieldAverageRainfall]),
	}
	if err := n.err(); err != nil {
		return in, err
	}
	return in, Validate(in, MsgRequired)
}

// Building builds a create-building body. LandSurveyID is taken from the
// form when present; callers fill it from the workflow pointer otherwise,
// so it is not validated here.
func Building(v Values) (api.BuildingRequest, error) {
	n := numbers{v: v}
	req := api.BuildingRequest{
		LandSurveyID:      v.Get(FieldLandSurveyID),
		BuildingType:      Snap(v[FieldBuildingType], BuildingTypes),
		TotalFloors:       n.int(FieldTotalFloors),
		FloorHeight:       n.float(FieldFloorHeight),
		TotalHeight:       n.float(FieldTotalHeight),
		BuiltUpArea:       n.float(FieldBuiltUpArea),
		Orientation:       Snap(v[FieldOrientation], Orientations),
		StructuralSystem:  Snap(v[FieldStructuralSystem], StructuralSystems),
		BasementFloors:    countOrZero(v[FieldBasementFloors]),
		ParkingFloors:     countOrZero(v[FieldParkingFloors]),
		ExpectedOccupancy: optionalInt(v[FieldExpectedOccupancy]),
	}
	if err := n.err(); err != nil {
		return req, err
	}
	check := req
	if check.LandSurveyID == "" {
		check.LandSurveyID = placeholderID
	}
	return req, Validate(check, MsgRequired)
}

// placeholderID stands in for ids the workflow supplies after parsing.
const placeholderID = "-"

// Wind builds an add-wind body for the given building.
func Wind(buildingID string, v Values) (api.WindRequest, error) {
	n := numbers{v: v}
	req := api.WindRequest{
		BuildingInputID:  buildingID,
		WindDirection:    n.float(FieldWindDirection),
		AverageWindSpeed: n.float(FieldAverageWindSpeed),
		PeakGustSpeed:    n.float(FieldPeakGustSpeed),
		TerrainRoughness: Snap(v[FieldTerrainRoughness], TerrainRoughness),
	}
	if err := n.err(); err != nil {
		return req, err
	}
	check := req
	if check.BuildingInputID == "" {
		check.BuildingInputID = placeholderID
	}
	return req, Validate(check, MsgRequired)
}
