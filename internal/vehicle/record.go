package vehicle

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// value accepts a JSON string or number and keeps its text form.
type value string

func (v *value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = value(strings.TrimSpace(s))
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*v = ""
	default:
		*v = value(b)
	}
	return nil
}

// set reports whether the value counts as provided; zero numbers do not.
func (v value) set() bool {
	if v == "" {
		return false
	}
	if f, err := strconv.ParseFloat(string(v), 64); err == nil {
		return f != 0
	}
	return true
}

type textValue struct {
	CurrentTextValue value `json:"CurrentTextValue"`
	CurrentValue     value `json:"CurrentValue"`
}

// Record is the subset of the KBA vehicleJson document the prefill uses.
type Record struct {
	Description      value      `json:"Description"`
	CarMake          *textValue `json:"CarMake"`
	MakeDescription  *textValue `json:"MakeDescription"`
	CarModel         *textValue `json:"CarModel"`
	ModelDescription *textValue `json:"ModelDescription"`
	PowerHP          value      `json:"PowerHP"`
	PowerKW          value      `json:"PowerKW"`
	EngineSize       value      `json:"EngineSize"`
	Fuel             value      `json:"Fuel"`
	FuelType         *textValue `json:"FuelType"`
	Doors            value      `json:"Doors"`
	Seats            value      `json:"Seats"`
	Transmission     value      `json:"Transmission"`
	Cylinders        value      `json:"Cylinders"`
	CO2Emissions     value      `json:"CO2Emissions"`
	EmissionClass    value      `json:"EmissionClass"`
	BodyType         value      `json:"BodyType"`
	Color            value      `json:"Color"`
	Gears            value      `json:"Gears"`
	DriveType        value      `json:"DriveType"`
}

// Prefill carries listing form values keyed like the listing fields.
// Empty fields were not provided by the lookup.
type Prefill struct {
	Title         string `json:"title,omitempty"`
	Make          string `json:"make,omitempty"`
	Model         string `json:"model,omitempty"`
	PowerPS       string `json:"powerPS,omitempty"`
	PowerKW       string `json:"powerKW,omitempty"`
	Displacement  string `json:"displacement,omitempty"`
	FuelType      string `json:"fuelType,omitempty"`
	Doors         string `json:"doors,omitempty"`
	Seats         string `json:"seats,omitempty"`
	Transmission  string `json:"transmission,omitempty"`
	Cylinders     string `json:"cylinders,omitempty"`
	CO2Emissions  string `json:"co2Emissions,omitempty"`
	EmissionClass string `json:"emissionClass,omitempty"`
	BodyType      string `json:"bodyType,omitempty"`
	Color         string `json:"color,omitempty"`
	Gears         string `json:"gears,omitempty"`
	DriveType     string `json:"driveType,omitempty"`
}

var fuelTypes = map[string]string{
	"Elektro":        "Elektro",
	"Benzin":         "Benzin",
	"Diesel":         "Diesel",
	"Hybrid":         "Hybrid",
	"Plug-in-Hybrid": "Plug-in-Hybrid",
	"Autogas":        "Autogas (LPG)",
	"Erdgas":         "Erdgas (CNG)",
	"LPG":            "Autogas (LPG)",
	"CNG":            "Erdgas (CNG)",
}

var transmissions = map[string]string{
	"Manuell":        "Manuell",
	"Manual":         "Manuell",
	"Automatik":      "Automatik",
	"Automatic":      "Automatik",
	"Halbautomatik":  "Halbautomatik",
	"Semi-Automatic": "Halbautomatik",
}

var bodyTypes = map[string]string{
	"Limousine":   "Limousine",
	"Kombi":       "Kombi",
	"SUV":         "SUV",
	"Coupé":       "Coupé",
	"Coupe":       "Coupé",
	"Cabrio":      "Cabrio",
	"Cabriolet":   "Cabrio",
	"Kleinwagen":  "Kleinwagen",
	"Van":         "Van/Transporter",
	"Transporter": "Van/Transporter",
}

var driveTypes = map[string]string{
	"Vorderradantrieb": "Vorderradantrieb",
	"FWD":              "Vorderradantrieb",
	"Front":            "Vorderradantrieb",
	"Hinterradantrieb": "Hinterradantrieb",
	"RWD":              "Hinterradantrieb",
	"Rear":             "Hinterradantrieb",
	"Allradantrieb":    "Allradantrieb",
	"AWD":              "Allradantrieb",
	"4WD":              "Allradantrieb",
	"All":              "Allradantrieb",
}

func mapped(m map[string]string, v value) string {
	if out, ok := m[string(v)]; ok {
		return out
	}
	return string(v)
}

func text(v value) string {
	if !v.set() {
		return ""
	}
	return string(v)
}

func firstText(vals ...*textValue) string {
	for _, v := range vals {
		if v != nil && v.CurrentTextValue != "" {
			return string(v.CurrentTextValue)
		}
	}
	return ""
}

// Prefill maps the record onto listing form values.
func (r Record) Prefill() Prefill {
	p := Prefill{
		Title:         string(r.Description),
		Make:          firstText(r.CarMake, r.MakeDescription),
		Model:         firstText(r.CarModel, r.ModelDescription),
		PowerPS:       text(r.PowerHP),
		PowerKW:       text(r.PowerKW),
		Doors:         text(r.Doors),
		Seats:         text(r.Seats),
		Cylinders:     text(r.Cylinders),
		CO2Emissions:  text(r.CO2Emissions),
		EmissionClass: text(r.EmissionClass),
		Color:         text(r.Color),
		Gears:         text(r.Gears),
	}

	if f, err := strconv.ParseFloat(string(r.EngineSize), 64); err == nil && f > 0 {
		p.Displacement = string(r.EngineSize)
	}

	fuel := r.Fuel
	if fuel == "" && r.FuelType != nil {
		fuel = r.FuelType.CurrentValue
	}
	if fuel != "" {
		p.FuelType = mapped(fuelTypes, fuel)
	}
	if r.Transmission != "" {
		p.Transmission = mapped(transmissions, r.Transmission)
	}
	if r.BodyType != "" {
		p.BodyType = mapped(bodyTypes, r.BodyType)
	}
	if r.DriveType != "" {
		p.DriveType = mapped(driveTypes, r.DriveType)
	}
	return p
}
