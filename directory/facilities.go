package directory

import (
	"sort"

	"github.com/golang/geo/s2"
	geojson "github.com/paulmach/go.geojson"
)

// FacilityType classifies a medical facility.
type FacilityType string

const (
	FacilityHospital        FacilityType = "hospital"
	FacilityClinic          FacilityType = "clinic"
	FacilityPharmacy        FacilityType = "pharmacy"
	FacilityEmergencyCenter FacilityType = "emergency_center"
)

// MedicalFacility is one entry in the static facility directory.
type MedicalFacility struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Type              FacilityType `json:"type"`
	Address           string       `json:"address"`
	Phone             string       `json:"phone"`
	Latitude          float64      `json:"latitude"`
	Longitude         float64      `json:"longitude"`
	IsOpen            bool         `json:"is_open"`
	Rating            float64      `json:"rating,omitempty"`
	Specialties       []string     `json:"specialties,omitempty"`
	EmergencyServices bool         `json:"emergency_services"`
	HasAmbulance      bool         `json:"has_ambulance"`
}

// FacilityWithDistance pairs a facility with its distance from a
// query point.
type FacilityWithDistance struct {
	MedicalFacility
	DistanceKm float64 `json:"distance_km"`
}

// Salem, Tamil Nadu facility fixtures.
var medicalFacilities = []MedicalFacility{
	{
		ID:                "1",
		Name:              "Salem Government Hospital",
		Type:              FacilityHospital,
		Address:           "Omalur Main Road, Salem, Tamil Nadu 636003",
		Phone:             "+91-427-2444444",
		Latitude:          11.6740,
		Longitude:         78.1489,
		IsOpen:            true,
		Rating:            4.2,
		Specialties:       []string{"Emergency Medicine", "Trauma Care", "ICU", "Surgery"},
		EmergencyServices: true,
		HasAmbulance:      true,
	},
	{
		ID:                "2",
		Name:              "Manipal Hospital Salem",
		Type:              FacilityHospital,
		Address:           "Dalmia Board, Salem, Tamil Nadu 636004",
		Phone:             "+91-427-2677777",
		Latitude:          11.6640,
		Longitude:         78.1389,
		IsOpen:            true,
		Rating:            4.5,
		Specialties:       []string{"Emergency", "Cardiology", "Neurology", "Orthopedics"},
		EmergencyServices: true,
		HasAmbulance:      true,
	},
	{
		ID:                "3",
		Name:              "KMC Specialty Hospital",
		Type:              FacilityHospital,
		Address:           "Attur Road, Salem, Tamil Nadu 636007",
		Phone:             "+91-427-2555555",
		Latitude:          11.6540,
		Longitude:         78.1289,
		IsOpen:            true,
		Rating:            4.3,
		Specialties:       []string{"Emergency", "Orthopedics", "General Surgery", "Pediatrics"},
		EmergencyServices: true,
		HasAmbulance:      false,
	},
	{
		ID:                "4",
		Name:              "Apollo Pharmacy",
		Type:              FacilityPharmacy,
		Address:           "Junction Main Road, Salem, Tamil Nadu 636001",
		Phone:             "+91-427-2333333",
		Latitude:          11.6780,
		Longitude:         78.1520,
		IsOpen:            true,
		Rating:            4.1,
		EmergencyServices: false,
		HasAmbulance:      false,
	},
	{
		ID:                "5",
		Name:              "Sri Gokulam Hospital",
		Type:              FacilityHospital,
		Address:           "Meyyanur Road, Salem, Tamil Nadu 636004",
		Phone:             "+91-427-2448171",
		Latitude:          11.6700,
		Longitude:         78.1350,
		IsOpen:            true,
		Rating:            4.4,
		Specialties:       []string{"Emergency", "Cardiology", "Nephrology"},
		EmergencyServices: true,
		HasAmbulance:      true,
	},
	{
		ID:                "6",
		Name:              "City Emergency Care Center",
		Type:              FacilityEmergencyCenter,
		Address:           "Five Roads, Salem, Tamil Nadu 636004",
		Phone:             "+91-427-2666666",
		Latitude:          11.6605,
		Longitude:         78.1460,
		IsOpen:            true,
		Specialties:       []string{"Emergency", "Trauma Care"},
		EmergencyServices: true,
		HasAmbulance:      true,
	},
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	from := s2.LatLngFromDegrees(lat1, lng1)
	to := s2.LatLngFromDegrees(lat2, lng2)
	return from.Distance(to).Radians() * earthRadiusKm
}

// Nearest returns up to limit facilities ordered by distance from the
// given point. With emergencyOnly set, facilities without emergency
// services are skipped.
func Nearest(lat, lng float64, limit int, emergencyOnly bool) []FacilityWithDistance {
	results := []FacilityWithDistance{}
	for _, f := range medicalFacilities {
		if emergencyOnly && !f.EmergencyServices {
			continue
		}
		results = append(results, FacilityWithDistance{
			MedicalFacility: f,
			DistanceKm:      DistanceKm(lat, lng, f.Latitude, f.Longitude),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// FeatureCollection exports the facility directory as GeoJSON for map
// clients.
func FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range medicalFacilities {
		feature := geojson.NewPointFeature([]float64{f.Longitude, f.Latitude})
		feature.SetProperty("id", f.ID)
		feature.SetProperty("name", f.Name)
		feature.SetProperty("type", string(f.Type))
		feature.SetProperty("phone", f.Phone)
		feature.SetProperty("emergency_services", f.EmergencyServices)
		feature.SetProperty("has_ambulance", f.HasAmbulance)
		fc.AddFeature(feature)
	}
	return fc
}
