// Package directory serves the static emergency contact and medical
// facility listings used by clients when composing or escalating a
// report.
package directory

// EmergencyContact is one national emergency number.
type EmergencyContact struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Type   string `json:"type"` // "call" or "sms"
}

var emergencyContacts = []EmergencyContact{
	{Name: "Ambulance", Number: "108", Type: "call"},
	{Name: "Police", Number: "100", Type: "call"},
	{Name: "Fire Service", Number: "101", Type: "call"},
	{Name: "Emergency Disaster", Number: "108", Type: "call"},
}

// Contacts returns the emergency contact directory.
func Contacts() []EmergencyContact {
	contacts := make([]EmergencyContact, len(emergencyContacts))
	copy(contacts, emergencyContacts)
	return contacts
}
