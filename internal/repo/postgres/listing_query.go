package postgres

import (
	"fmt"
	"strings"

	"github.com/automartines/autoonline/internal/domain/listing"
)

// column binds a listings column to its field. ref returns a pointer usable
// both as a Scan destination and, through value, as a query argument.
type column struct {
	name string
	ref  func(l *listing.Listing) any
}

// writableColumns is every column a listing write sets, in a fixed order.
var writableColumns = []column{
	{"title", func(l *listing.Listing) any { return &l.Title }},
	{"description", func(l *listing.Listing) any { return &l.Description }},
	{"category", func(l *listing.Listing) any { return &l.Category }},
	{"condition", func(l *listing.Listing) any { return &l.Condition }},
	{"price", func(l *listing.Listing) any { return &l.Price }},
	{"make", func(l *listing.Listing) any { return &l.Make }},
	{"model", func(l *listing.Listing) any { return &l.Model }},
	{"year", func(l *listing.Listing) any { return &l.Year }},
	{"first_registration", func(l *listing.Listing) any { return &l.FirstRegistration }},
	{"mileage", func(l *listing.Listing) any { return &l.Mileage }},
	{"power_ps", func(l *listing.Listing) any { return &l.PowerPS }},
	{"power_kw", func(l *listing.Listing) any { return &l.PowerKW }},
	{"displacement", func(l *listing.Listing) any { return &l.Displacement }},
	{"cylinders", func(l *listing.Listing) any { return &l.Cylinders }},
	{"fuel_type", func(l *listing.Listing) any { return &l.FuelType }},
	{"transmission", func(l *listing.Listing) any { return &l.Transmission }},
	{"gears", func(l *listing.Listing) any { return &l.Gears }},
	{"drive_type", func(l *listing.Listing) any { return &l.DriveType }},
	{"fuel_consumption_city", func(l *listing.Listing) any { return &l.FuelConsumptionCity }},
	{"fuel_consumption_highway", func(l *listing.Listing) any { return &l.FuelConsumptionHighway }},
	{"fuel_consumption_combined", func(l *listing.Listing) any { return &l.FuelConsumptionCombined }},
	{"co2_emissions", func(l *listing.Listing) any { return &l.CO2Emissions }},
	{"emission_class", func(l *listing.Listing) any { return &l.EmissionClass }},
	{"emission_sticker", func(l *listing.Listing) any { return &l.EmissionSticker }},
	{"color", func(l *listing.Listing) any { return &l.Color }},
	{"color_manufacturer", func(l *listing.Listing) any { return &l.ColorManufacturer }},
	{"interior_color", func(l *listing.Listing) any { return &l.InteriorColor }},
	{"interior_type", func(l *listing.Listing) any { return &l.InteriorType }},
	{"doors", func(l *listing.Listing) any { return &l.Doors }},
	{"seats", func(l *listing.Listing) any { return &l.Seats }},
	{"previous_owners", func(l *listing.Listing) any { return &l.PreviousOwners }},
	{"full_service_history", func(l *listing.Listing) any { return &l.FullServiceHistory }},
	{"non_smoking_vehicle", func(l *listing.Listing) any { return &l.NonSmokingVehicle }},
	{"features", func(l *listing.Listing) any { return &l.Features }},
	{"safety_features", func(l *listing.Listing) any { return &l.SafetyFeatures }},
	{"comfort_features", func(l *listing.Listing) any { return &l.ComfortFeatures }},
	{"entertainment_features", func(l *listing.Listing) any { return &l.EntertainmentFeatures }},
	{"extras_features", func(l *listing.Listing) any { return &l.ExtrasFeatures }},
	{"parking_assistance", func(l *listing.Listing) any { return &l.ParkingAssistance }},
	{"availability", func(l *listing.Listing) any { return &l.Availability }},
	{"vehicle_type", func(l *listing.Listing) any { return &l.VehicleType }},
	{"body_type", func(l *listing.Listing) any { return &l.BodyType }},
	{"climatisation", func(l *listing.Listing) any { return &l.Climatisation }},
	{"sold", func(l *listing.Listing) any { return &l.Sold }},
	{"images", func(l *listing.Listing) any { return &l.Images }},
}

// value dereferences a column ref for use as a query argument.
func value(ref any) any {
	switch p := ref.(type) {
	case *string:
		return *p
	case *float64:
		return *p
	case *bool:
		return *p
	case **int:
		return *p
	case **float64:
		return *p
	case *[]string:
		if *p == nil {
			return []string{}
		}
		return *p
	default:
		panic(fmt.Sprintf("postgres: unsupported listing column type %T", ref))
	}
}

func columnNames(prefix string) string {
	names := make([]string, 0, len(writableColumns))
	for _, c := range writableColumns {
		names = append(names, prefix+c.name)
	}
	return strings.Join(names, ", ")
}

func writeArgs(l *listing.Listing) []any {
	args := make([]any, 0, len(writableColumns))
	for _, c := range writableColumns {
		args = append(args, value(c.ref(l)))
	}
	return args
}

// selectListing reads every column plus the joined owner fields.
var selectListing = `SELECT l.id, l.user_id, ` + columnNames("l.") + `, l.created_at, l.updated_at,
	COALESCE(u.full_name, ''), COALESCE(u.email, '')
FROM listings l
LEFT JOIN users u ON u.id = l.user_id`

func scanDest(l *listing.Listing) []any {
	dest := make([]any, 0, len(writableColumns)+6)
	dest = append(dest, &l.ID, &l.UserID)
	for _, c := range writableColumns {
		dest = append(dest, c.ref(l))
	}
	return append(dest, &l.CreatedAt, &l.UpdatedAt, &l.OwnerName, &l.OwnerEmail)
}

func insertListingSQL() string {
	placeholders := make([]string, 0, len(writableColumns)+1)
	for i := range len(writableColumns) + 1 {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	return `INSERT INTO listings (` + columnNames("") + `, user_id)
	VALUES (` + strings.Join(placeholders, ", ") + `)
	RETURNING id, created_at, updated_at`
}

// updateListingSQL writes every column; $1 is the id.
func updateListingSQL() string {
	sets := make([]string, 0, len(writableColumns)+1)
	for i, c := range writableColumns {
		sets = append(sets, fmt.Sprintf("%s = $%d", c.name, i+2))
	}
	sets = append(sets, "updated_at = NOW()")
	return `UPDATE listings SET ` + strings.Join(sets, ", ") + `
	WHERE id = $1
	RETURNING user_id, created_at, updated_at`
}

// buildListQuery renders f as SQL. Sold rows are excluded unless the
// filter asks for them.
func buildListQuery(f listing.ListFilter) (string, []any) {
	var conds []string
	var args []any

	argsPosition := 1
	add := func(format string, v any) {
		conds = append(conds, fmt.Sprintf(format, argsPosition))
		args = append(args, v)
		argsPosition++
	}

	switch {
	case f.Sold != nil:
		add("l.sold = $%d", *f.Sold)
	case !f.IncludeSold:
		conds = append(conds, "l.sold = false")
	}

	if f.UserID != nil {
		add("l.user_id = $%d", *f.UserID)
	}
	if f.Category != nil {
		add("l.category = $%d", *f.Category)
	}
	if f.Make != nil {
		add("l.make = $%d", *f.Make)
	}
	if f.Year != nil {
		add("l.year = $%d", *f.Year)
	}
	if f.MinPrice != nil {
		add("l.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("l.price <= $%d", *f.MaxPrice)
	}
	if f.Search != nil {
		conds = append(conds, fmt.Sprintf(
			"(l.title ILIKE $%[1]d OR l.description ILIKE $%[1]d OR l.make ILIKE $%[1]d OR l.model ILIKE $%[1]d)",
			argsPosition,
		))
		args = append(args, "%"+escapeLike(*f.Search)+"%")
		argsPosition++
	}

	query := selectListing
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY l.created_at DESC, l.id DESC"

	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
