package listing

import (
	"errors"
	"slices"
	"time"

	"github.com/automartines/autoonline/internal/domain/user"
)

const (
	CategorySale = "sale"

	ConditionUsed     = "used"
	ConditionNew      = "new"
	ConditionOldtimer = "oldtimer"
	ConditionPreowned = "preowned"
)

var Conditions = []string{ConditionUsed, ConditionNew, ConditionOldtimer, ConditionPreowned}

var (
	ErrNotFound  = errors.New("listing not found")
	ErrForbidden = errors.New("not the owner of this listing")
)

// Listing is a vehicle offered for sale. Nullable numeric columns are
// pointers; text columns are plain strings; lists are never nil once a
// listing leaves this package.
type Listing struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`

	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price"`

	Make              string `json:"make"`
	Model             string `json:"model"`
	Year              *int   `json:"year"`
	FirstRegistration string `json:"firstRegistration"`
	Mileage           *int   `json:"mileage"`

	PowerPS      *int   `json:"powerPS"`
	PowerKW      *int   `json:"powerKW"`
	Displacement *int   `json:"displacement"`
	Cylinders    *int   `json:"cylinders"`
	FuelType     string `json:"fuelType"`
	Transmission string `json:"transmission"`
	Gears        *int   `json:"gears"`
	DriveType    string `json:"driveType"`

	FuelConsumptionCity     *float64 `json:"fuelConsumptionCity"`
	FuelConsumptionHighway  *float64 `json:"fuelConsumptionHighway"`
	FuelConsumptionCombined *float64 `json:"fuelConsumptionCombined"`
	CO2Emissions            *int     `json:"co2Emissions"`
	EmissionClass           string   `json:"emissionClass"`
	EmissionSticker         string   `json:"emissionSticker"`

	Color             string `json:"color"`
	ColorManufacturer string `json:"colorManufacturer"`
	InteriorColor     string `json:"interiorColor"`
	InteriorType      string `json:"interiorType"`
	Doors             *int   `json:"doors"`
	Seats             *int   `json:"seats"`

	PreviousOwners     *int `json:"previousOwners"`
	FullServiceHistory bool `json:"fullServiceHistory"`
	NonSmokingVehicle  bool `json:"nonSmokingVehicle"`

	Features              []string `json:"features"`
	SafetyFeatures        []string `json:"safetyFeatures"`
	ComfortFeatures       []string `json:"comfortFeatures"`
	EntertainmentFeatures []string `json:"entertainmentFeatures"`
	ExtrasFeatures        []string `json:"extrasFeatures"`
	ParkingAssistance     []string `json:"parkingAssistance"`

	Availability  string `json:"availability"`
	VehicleType   string `json:"vehicleType"`
	BodyType      string `json:"bodyType"`
	Climatisation string `json:"climatisation"`

	Sold   bool     `json:"sold"`
	Images []string `json:"images"`

	// populated by reads that join the owner row
	OwnerName  string `json:"ownerName,omitempty"`
	OwnerEmail string `json:"ownerEmail,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDraft returns an unsaved listing owned by ownerID with the column defaults.
func NewDraft(ownerID int64) Listing {
	l := Listing{
		UserID:    ownerID,
		Category:  CategorySale,
		Condition: ConditionUsed,
	}
	l.Normalize()
	return l
}

// Normalize replaces nil lists with empty ones.
func (l *Listing) Normalize() {
	for _, list := range l.lists() {
		if *list == nil {
			*list = []string{}
		}
	}
}

// Clone deep-copies the list fields and the numeric pointers.
func (l Listing) Clone() Listing {
	out := l
	for _, list := range out.lists() {
		*list = slices.Clone(*list)
	}
	for _, p := range out.ints() {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	for _, p := range out.floats() {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	out.Normalize()
	return out
}

func (l *Listing) lists() []*[]string {
	return []*[]string{
		&l.Features, &l.SafetyFeatures, &l.ComfortFeatures,
		&l.EntertainmentFeatures, &l.ExtrasFeatures, &l.ParkingAssistance,
		&l.Images,
	}
}

func (l *Listing) ints() []**int {
	return []**int{
		&l.Year, &l.Mileage, &l.PowerPS, &l.PowerKW, &l.Displacement, &l.Cylinders,
		&l.Gears, &l.CO2Emissions, &l.Doors, &l.Seats, &l.PreviousOwners,
	}
}

func (l *Listing) floats() []**float64 {
	return []**float64{&l.FuelConsumptionCity, &l.FuelConsumptionHighway, &l.FuelConsumptionCombined}
}

// Actor is the authenticated caller as resolved by the auth middleware.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// CanModify is the owner-or-admin rule shared by update and delete.
func (a Actor) CanModify(l Listing) bool {
	return a.UserID == l.UserID || a.IsAdmin()
}
