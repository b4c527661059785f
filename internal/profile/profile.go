// Package profile holds the single-user fitness profile that personalizes
// chat replies and generated workout plans.
package profile

import (
	"fmt"
	"strings"
	"time"
)

// Profile is the onboarding data for the application's single user.
// Zero values mean "not provided"; renderers skip missing fields.
type Profile struct {
	Age                      int       `json:"age,omitempty"`
	Gender                   string    `json:"gender,omitempty"`
	ExperienceLevel          string    `json:"experience_level,omitempty"`
	PrimarySport             string    `json:"primary_sport,omitempty"`
	FitnessGoals             []string  `json:"fitness_goals"`
	Injuries                 []string  `json:"injuries"`
	HealthConditions         []string  `json:"health_conditions"`
	AvailableDaysPerWeek     int       `json:"available_days_per_week,omitempty"`
	PreferredSessionDuration int       `json:"preferred_session_duration,omitempty"`
	TrainingLocation         string    `json:"training_location,omitempty"`
	AvailableEquipment       []string  `json:"available_equipment"`
	HasGymMembership         bool      `json:"has_gym_membership"`
	UpdatedAt                time.Time `json:"updated_at,omitempty"`
}

// IsZero reports whether no profile field has been provided.
func (p Profile) IsZero() bool {
	return p.Age == 0 && p.Gender == "" && p.ExperienceLevel == "" &&
		p.PrimarySport == "" && len(p.FitnessGoals) == 0 &&
		len(p.Injuries) == 0 && len(p.HealthConditions) == 0 &&
		p.AvailableDaysPerWeek == 0 && p.PreferredSessionDuration == 0 &&
		p.TrainingLocation == "" && len(p.AvailableEquipment) == 0 &&
		!p.HasGymMembership
}

// Summary renders the profile as the bulleted block injected into chat
// prompts. An empty profile yields an explicit "no information" line so the
// model never sees a dangling header.
func (p Profile) Summary() string {
	var parts []string

	if p.Age > 0 {
		parts = append(parts, fmt.Sprintf("Age: %d years old", p.Age))
	}
	if p.Gender != "" {
		parts = append(parts, "Gender: "+p.Gender)
	}
	if p.ExperienceLevel != "" {
		parts = append(parts, "Experience level: "+p.ExperienceLevel)
	}
	if p.PrimarySport != "" {
		parts = append(parts, "Primary sport: "+p.PrimarySport)
	}
	if len(p.FitnessGoals) > 0 {
		parts = append(parts, "Goals: "+strings.Join(p.FitnessGoals, ", "))
	}

	var limitations []string
	if len(p.Injuries) > 0 {
		limitations = append(limitations, "Injuries: "+strings.Join(p.Injuries, ", "))
	}
	if len(p.HealthConditions) > 0 {
		limitations = append(limitations, "Health conditions: "+strings.Join(p.HealthConditions, ", "))
	}
	if len(limitations) > 0 {
		parts = append(parts, strings.Join(limitations, " | "))
	}

	if p.AvailableDaysPerWeek > 0 {
		parts = append(parts, fmt.Sprintf("Can train %d days/week", p.AvailableDaysPerWeek))
	}
	if p.PreferredSessionDuration > 0 {
		parts = append(parts, fmt.Sprintf("Prefers %d-minute sessions", p.PreferredSessionDuration))
	}
	if p.TrainingLocation != "" {
		parts = append(parts, "Trains at: "+p.TrainingLocation)
	}
	if p.HasGymMembership {
		parts = append(parts, "has gym access")
	}
	if len(p.AvailableEquipment) > 0 {
		parts = append(parts, "Available equipment: "+strings.Join(p.AvailableEquipment, ", "))
	}

	if len(parts) == 0 {
		return "USER PROFILE: No profile information available yet."
	}

	var b strings.Builder
	b.WriteString("USER PROFILE:")
	for _, part := range parts {
		b.WriteString("\n- ")
		b.WriteString(part)
	}
	return b.String()
}

// PlanContext renders the profile as the compact line-per-fact block used in
// plan generation prompts, with injuries and health conditions flagged so the
// model works around them.
func (p Profile) PlanContext() string {
	var parts []string

	if p.Age > 0 {
		parts = append(parts, fmt.Sprintf("Age: %d", p.Age))
	}
	if p.Gender != "" {
		parts = append(parts, "Gender: "+p.Gender)
	}
	if p.ExperienceLevel != "" {
		parts = append(parts, "Experience level: "+p.ExperienceLevel)
	}
	if p.PrimarySport != "" {
		parts = append(parts, "Primary sport: "+p.PrimarySport)
	}
	if len(p.FitnessGoals) > 0 {
		parts = append(parts, "Goals: "+strings.Join(p.FitnessGoals, ", "))
	}
	if len(p.Injuries) > 0 {
		parts = append(parts, "Injuries to work around: "+strings.Join(p.Injuries, ", "))
	}
	if len(p.HealthConditions) > 0 {
		parts = append(parts, "Health conditions: "+strings.Join(p.HealthConditions, ", "))
	}
	if p.AvailableDaysPerWeek > 0 {
		parts = append(parts, fmt.Sprintf("Available: %d days/week", p.AvailableDaysPerWeek))
	}
	if p.PreferredSessionDuration > 0 {
		parts = append(parts, fmt.Sprintf("Session duration: %d minutes", p.PreferredSessionDuration))
	}
	if p.TrainingLocation != "" {
		parts = append(parts, "Location: "+p.TrainingLocation)
	}
	if len(p.AvailableEquipment) > 0 {
		parts = append(parts, "Equipment: "+strings.Join(p.AvailableEquipment, ", "))
	} else if p.HasGymMembership {
		parts = append(parts, "Has gym access")
	}

	return strings.Join(parts, "\n")
}
