package data

import (
	"fmt"
	"strings"
)

// LandUse is the zoning category of a parcel.
type LandUse int

const (
	House LandUse = iota
	RuralResidential
	Units
	Flats
)

// LandUses lists every category in level order.
var LandUses = []LandUse{House, RuralResidential, Units, Flats}

func (l LandUse) String() string {
	switch l {
	case House:
		return "House"
	case RuralResidential:
		return "Rural Residential"
	case Units:
		return "Units"
	case Flats:
		return "Flats"
	}
	return fmt.Sprintf("LandUse(%d)", int(l))
}

// ParseLandUse accepts the display name, case-insensitively. Hyphens and
// underscores are treated as spaces.
func ParseLandUse(s string) (LandUse, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	for _, l := range LandUses {
		if strings.ToLower(l.String()) == norm {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown land use %q", s)
}

// Field identifies one non-identifier attribute of a Property.
type Field uint8

const (
	FieldLandUse Field = 1 << iota
	FieldParcelArea
	FieldBedrooms
	FieldWater
)

// Property is a single synthetic parcel record. Fields flagged in Missing hold
// their zero value and must be treated as null.
type Property struct {
	ID               string
	LandUse          LandUse
	ParcelArea       float64 // m²
	Bedrooms         int
	WaterConsumption float64 // average daily litres
	Missing          Field
}

// IsMissing reports whether f is null on this record.
func (p Property) IsMissing(f Field) bool { return p.Missing&f != 0 }
