package listing

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxTitleLen = 200

// fieldSpec describes one writable column: its form key, how the raw
// value is parsed and where the result lands.
type fieldSpec struct {
	name       string
	updateOnly bool
	apply      func(l *Listing, raw string) error
}

func field[T any](name string, parse func(string) (Optional[T], error), set func(*Listing, Optional[T])) fieldSpec {
	return fieldSpec{
		name: name,
		apply: func(l *Listing, raw string) error {
			v, err := parse(raw)
			if err != nil {
				return err
			}
			set(l, v)
			return nil
		},
	}
}

func textField(name string, dst func(*Listing) *string) fieldSpec {
	return field(name, parseText, func(l *Listing, v Optional[string]) { v.Assign(dst(l)) })
}

func intField(name string, dst func(*Listing) **int) fieldSpec {
	return field(name, parseInt, func(l *Listing, v Optional[int]) { v.AssignPtr(dst(l)) })
}

func floatField(name string, dst func(*Listing) **float64) fieldSpec {
	return field(name, parseFloat, func(l *Listing, v Optional[float64]) { v.AssignPtr(dst(l)) })
}

func boolField(name string, dst func(*Listing) *bool) fieldSpec {
	return field(name, parseBool, func(l *Listing, v Optional[bool]) { v.Assign(dst(l)) })
}

func listField(name string, dst func(*Listing) *[]string) fieldSpec {
	return field(name, parseListValue, func(l *Listing, v Optional[[]string]) { v.Assign(dst(l)) })
}

// fieldSpecs is the single source of truth for create and update; the
// repository reads and writes the same column set.
var fieldSpecs = []fieldSpec{
	field("title", parseTitle, func(l *Listing, v Optional[string]) { v.Assign(&l.Title) }),
	textField("description", func(l *Listing) *string { return &l.Description }),
	textField("category", func(l *Listing) *string { return &l.Category }),
	field("condition", parseCondition, func(l *Listing, v Optional[string]) { v.Assign(&l.Condition) }),
	field("price", parsePrice, func(l *Listing, v Optional[float64]) { v.Assign(&l.Price) }),

	textField("make", func(l *Listing) *string { return &l.Make }),
	textField("model", func(l *Listing) *string { return &l.Model }),
	intField("year", func(l *Listing) **int { return &l.Year }),
	textField("firstRegistration", func(l *Listing) *string { return &l.FirstRegistration }),
	intField("mileage", func(l *Listing) **int { return &l.Mileage }),

	intField("powerPS", func(l *Listing) **int { return &l.PowerPS }),
	intField("powerKW", func(l *Listing) **int { return &l.PowerKW }),
	intField("displacement", func(l *Listing) **int { return &l.Displacement }),
	intField("cylinders", func(l *Listing) **int { return &l.Cylinders }),
	textField("fuelType", func(l *Listing) *string { return &l.FuelType }),
	textField("transmission", func(l *Listing) *string { return &l.Transmission }),
	intField("gears", func(l *Listing) **int { return &l.Gears }),
	textField("driveType", func(l *Listing) *string { return &l.DriveType }),

	floatField("fuelConsumptionCity", func(l *Listing) **float64 { return &l.FuelConsumptionCity }),
	floatField("fuelConsumptionHighway", func(l *Listing) **float64 { return &l.FuelConsumptionHighway }),
	floatField("fuelConsumptionCombined", func(l *Listing) **float64 { return &l.FuelConsumptionCombined }),
	intField("co2Emissions", func(l *Listing) **int { return &l.CO2Emissions }),
	textField("emissionClass", func(l *Listing) *string { return &l.EmissionClass }),
	textField("emissionSticker", func(l *Listing) *string { return &l.EmissionSticker }),

	textField("color", func(l *Listing) *string { return &l.Color }),
	textField("colorManufacturer", func(l *Listing) *string { return &l.ColorManufacturer }),
	textField("interiorColor", func(l *Listing) *string { return &l.InteriorColor }),
	textField("interiorType", func(l *Listing) *string { return &l.InteriorType }),
	intField("doors", func(l *Listing) **int { return &l.Doors }),
	intField("seats", func(l *Listing) **int { return &l.Seats }),

	intField("previousOwners", func(l *Listing) **int { return &l.PreviousOwners }),
	boolField("fullServiceHistory", func(l *Listing) *bool { return &l.FullServiceHistory }),
	boolField("nonSmokingVehicle", func(l *Listing) *bool { return &l.NonSmokingVehicle }),

	listField("features", func(l *Listing) *[]string { return &l.Features }),
	listField("safetyFeatures", func(l *Listing) *[]string { return &l.SafetyFeatures }),
	listField("comfortFeatures", func(l *Listing) *[]string { return &l.ComfortFeatures }),
	listField("entertainmentFeatures", func(l *Listing) *[]string { return &l.EntertainmentFeatures }),
	listField("extrasFeatures", func(l *Listing) *[]string { return &l.ExtrasFeatures }),
	listField("parkingAssistance", func(l *Listing) *[]string { return &l.ParkingAssistance }),

	textField("availability", func(l *Listing) *string { return &l.Availability }),
	textField("vehicleType", func(l *Listing) *string { return &l.VehicleType }),
	textField("bodyType", func(l *Listing) *string { return &l.BodyType }),
	textField("climatisation", func(l *Listing) *string { return &l.Climatisation }),

	updateOnly(boolField("sold", func(l *Listing) *bool { return &l.Sold })),
}

func updateOnly(f fieldSpec) fieldSpec {
	f.updateOnly = true
	return f
}

// FieldNames lists every form key a listing write understands.
func FieldNames() []string {
	names := make([]string, 0, len(fieldSpecs))
	for _, f := range fieldSpecs {
		names = append(names, f.name)
	}
	return names
}

func parseText(raw string) (Optional[string], error) {
	return Some(strings.TrimSpace(raw)), nil
}

func parseInt(raw string) (Optional[int], error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null[int](), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// "150.0" style values from number inputs
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return Unset[int](), errRule("int", "", "must be a whole number")
		}
		if math.Abs(f) > math.MaxInt32 {
			return Unset[int](), errIntRange()
		}
		n = int64(f)
	}
	// columns are INTEGER
	if n > math.MaxInt32 || n < math.MinInt32 {
		return Unset[int](), errIntRange()
	}
	return Some(int(n)), nil
}

func errIntRange() error {
	return errRule("max", strconv.Itoa(math.MaxInt32), "must be between %d and %d", math.MinInt32, math.MaxInt32)
}

// parseTitle applies the create-time length bound on update too.
func parseTitle(raw string) (Optional[string], error) {
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) > maxTitleLen {
		p := strconv.Itoa(maxTitleLen)
		return Unset[string](), errRule("max", p, "%s", ruleMessage("max", p))
	}
	return Some(s), nil
}

func parseFloat(raw string) (Optional[float64], error) {
	s := strings.TrimSpace(strings.Replace(raw, ",", ".", 1))
	if s == "" {
		return Null[float64](), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Unset[float64](), errRule("number", "", "must be a number")
	}
	return Some(f), nil
}

// parsePrice differs from parseFloat: price is NOT NULL, so blank stays unset
// and create-time presence is checked by the validator.
func parsePrice(raw string) (Optional[float64], error) {
	v, err := parseFloat(raw)
	if err != nil || v.IsNull() {
		return Unset[float64](), err
	}
	if p, _ := v.Get(); p < 0 {
		return Unset[float64](), errRule("gte", "0", "must be at least 0")
	}
	return v, nil
}

func parseCondition(raw string) (Optional[string], error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !slices.Contains(Conditions, s) {
		return Unset[string](), errRule("oneof", strings.Join(Conditions, " "), "must be one of %s", strings.Join(Conditions, ", "))
	}
	return Some(s), nil
}

func parseBool(raw string) (Optional[bool], error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return Some(true), nil
	case "0", "false", "off", "no", "":
		return Some(false), nil
	}
	return Unset[bool](), errRule("boolean", "", "must be true or false")
}

func parseListValue(raw string) (Optional[[]string], error) {
	list, err := ParseList(raw)
	if err != nil {
		return Unset[[]string](), errRule("list", "", "must be a JSON array of strings")
	}
	return Some(list), nil
}

var errNotList = errors.New("not a JSON array of strings")

// ParseList decodes the wire form of a list column. Blank means empty.
func ParseList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, errNotList
	}
	if out == nil {
		// literal null
		out = []string{}
	}
	return out, nil
}

// EncodeList is the inverse of ParseList; order is preserved.
func EncodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}
