package models

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// UserProfile is the single stored profile of this single-user system,
// persisted wholesale under one fixed key and replaced on every edit.
type UserProfile struct {
	Height    float64   `json:"height"` // cm
	Weight    float64   `json:"weight"` // kg
	Age       int       `json:"age"`
	Gender    string    `json:"gender"` // male | female
	Targets   TargetSet `json:"targets"`
	UpdatedAt string    `json:"updatedAt"` // RFC3339, server-stamped on save
}
