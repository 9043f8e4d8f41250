package matching

// Release reasons carried on pair-release notifications.
const (
	ReleaseReasonLeft         = "left"
	ReleaseReasonEnded        = "ended"
	ReleaseReasonDisconnected = "disconnected"
)

// Profile is the slice of a user's dating profile the scorer and the
// match-found payload need. It is read-only to this package; the storage
// layer owns the full record.
type Profile struct {
	UserID          string `json:"user_id"`
	Sex             string `json:"sex"`
	Age             int    `json:"age"`
	Height          int    `json:"height"` // centimeters
	Hometown        string `json:"hometown"`
	Language        string `json:"language"`
	PersonalityType string `json:"personality_type,omitempty"` // empty until the test is completed
}

// Criteria describes what the *other* party's profile must satisfy.
// Ranges are inclusive.
type Criteria struct {
	UserID    string `json:"user_id"`
	Sex       string `json:"sex"`
	AgeMin    int    `json:"age_min"`
	AgeMax    int    `json:"age_max"`
	HeightMin int    `json:"height_min"`
	HeightMax int    `json:"height_max"`
	Hometown  string `json:"hometown"`
	Language  string `json:"language"`
}
