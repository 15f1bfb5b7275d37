package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/siteassess/internal/forms"
)

type field struct {
	Key         string
	Label       string
	Placeholder string
	Secret      bool
}

// form is a column of text inputs with one focused field.
type form struct {
	title  string
	fields []field
	inputs []textinput.Model
	focus  int
}

func newForm(title string, fields []field) *form {
	f := &form{title: title, fields: fields}
	for i, fd := range fields {
		in := textinput.New()
		in.Prompt = fd.Label + ": "
		in.Placeholder = fd.Placeholder
		if fd.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		if i == 0 {
			in.Focus()
		}
		f.inputs = append(f.inputs, in)
	}
	return f
}

func (f *form) move(dir int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + dir + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) values() forms.Values {
	out := make(forms.Values, len(f.fields))
	for i, fd := range f.fields {
		out[fd.Key] = f.inputs[i].Value()
	}
	return out
}

func (f *form) set(key, value string) {
	for i, fd := range f.fields {
		if fd.Key == key {
			f.inputs[i].SetValue(value)
			return
		}
	}
}

func (f *form) value(key string) string {
	for i, fd := range f.fields {
		if fd.Key == key {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// focusOn moves focus to the field with key.
func (f *form) focusOn(key string) {
	for i, fd := range f.fields {
		if fd.Key == key {
			f.move(i - f.focus)
			return
		}
	}
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.move(-f.focus)
}

func (f *form) view() string {
	lines := []string{titleStyle.Render(f.title)}
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	return strings.Join(lines, "\n")
}

func loginForm() *form {
	return newForm("Login", []field{
		{Key: forms.FieldEmail, Label: "Email"},
		{Key: forms.FieldPassword, Label: "Password", Secret: true},
	})
}

func registerForm() *form {
	return newForm("Register", []field{
		{Key: forms.FieldName, Label: "Name"},
		{Key: forms.FieldEmail, Label: "Email"},
		{Key: forms.FieldPassword, Label: "Password", Secret: true},
		{Key: forms.FieldRole, Label: "Role", Placeholder: strings.Join(forms.Roles, "/")},
	})
}

func surveyForm() *form {
	return newForm("New Land Survey", []field{
		{Key: forms.FieldLatitude, Label: "Latitude"},
		{Key: forms.FieldLongitude, Label: "Longitude"},
		{Key: forms.FieldPlotArea, Label: "Plot area (sq.m)"},
		{Key: forms.FieldSoilType, Label: "Soil type", Placeholder: strings.Join(forms.SoilTypes, "/")},
		{Key: forms.FieldSlope, Label: "Slope (%)"},
		{Key: forms.FieldElevation, Label: "Elevation (m)"},
		{Key: forms.FieldWaterTableDepth, Label: "Water table depth (m)"},
		{Key: forms.FieldSeismicZone, Label: "Seismic zone", Placeholder: strings.Join(forms.SeismicZones, "/")},
		{Key: forms.FieldFloodRisk, Label: "Flood risk", Placeholder: strings.Join(forms.FloodRisks, "/")},
		{Key: forms.FieldNearbyWaterBodies, Label: "Nearby water bodies", Placeholder: "true/false"},
		{Key: forms.FieldWaterBodyDistance, Label: "Water body distance (m)", Placeholder: "optional"},
		{Key: forms.FieldAverageRainfall, Label: "Average rainfall (mm)", Placeholder: "optional"},
	})
}

func buildingForm() *form {
	return newForm("New Building Input", []field{
		{Key: forms.FieldBuildingType, Label: "Building type", Placeholder: strings.Join(forms.BuildingTypes, "/")},
		{Key: forms.FieldTotalFloors, Label: "Total floors"},
		{Key: forms.FieldFloorHeight, Label: "Floor height (m)"},
		{Key: forms.FieldTotalHeight, Label: "Total height (m)"},
		{Key: forms.FieldBuiltUpArea, Label: "Built-up area (sq.m)"},
		{Key: forms.FieldOrientation, Label: "Orientation", Placeholder: strings.Join(forms.Orientations, "/")},
		{Key: forms.FieldStructuralSystem, Label: "Structural system", Placeholder: strings.Join(forms.StructuralSystems, "/")},
		{Key: forms.FieldBasementFloors, Label: "Basement floors", Placeholder: "0"},
		{Key: forms.FieldParkingFloors, Label: "Parking floors", Placeholder: "0"},
		{Key: forms.FieldExpectedOccupancy, Label: "Expected occupancy", Placeholder: "optional"},
	})
}

func windForm() *form {
	return newForm("Wind Data", []field{
		{Key: forms.FieldWindDirection, Label: "Wind direction (deg)"},
		{Key: forms.FieldAverageWindSpeed, Label: "Average wind speed (m/s)"},
		{Key: forms.FieldPeakGustSpeed, Label: "Peak gust speed (m/s)"},
		{Key: forms.FieldTerrainRoughness, Label: "Terrain roughness", Placeholder: strings.Join(forms.TerrainRoughness, "/")},
	})
}
