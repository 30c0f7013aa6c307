package domain

import (
	"strings"
	"time"
)

// VehicleTimeLayout is the persisted registration timestamp format (UTC,
// seconds precision, no zone suffix).
const VehicleTimeLayout = "2006-01-02T15:04:05"

// Vehicle is one registered vehicle. Field names match the persisted
// snapshot format.
type Vehicle struct {
	Year         string `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Color        string `json:"color"`
	Plate        string `json:"plate"`
	State        string `json:"state"`
	Usage        string `json:"usage"`
	RegisteredAt string `json:"registered_at"`
}

// StampRegistered sets RegisteredAt from t.
func (v *Vehicle) StampRegistered(t time.Time) {
	v.RegisteredAt = t.UTC().Format(VehicleTimeLayout)
}

// PlateMatches compares plates case-insensitively.
func (v Vehicle) PlateMatches(plate string) bool {
	return strings.EqualFold(strings.TrimSpace(v.Plate), strings.TrimSpace(plate))
}

// Summary renders a one-line description.
func (v Vehicle) Summary() string {
	return orNA(v.Year) + " " + orNA(v.Make) + " " + orNA(v.Model) + " — " + orNA(v.Plate) + " (" + orNA(v.State) + ")"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
