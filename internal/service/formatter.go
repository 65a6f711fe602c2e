package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/carefinder/backend/internal/models"
)

const (
	placeholderRating     = "Not rated"
	placeholderFee        = "Fee not specified"
	placeholderExperience = "Experience not specified"
	placeholderContact    = "Not available"
	placeholderAddress    = "Address not available"
)

// Format flattens matches into the summaries the UI renders, keeping order.
func Format(matches []models.MatchResult) []models.ProviderSummary {
	out := make([]models.ProviderSummary, 0, len(matches))
	for _, m := range matches {
		out = append(out, summarize(m))
	}
	return out
}

// FormatDistance renders a distance for display. Estimates are marked with a
// leading "~" and rounded to whole kilometres.
func FormatDistance(km float64, basis models.DistanceBasis) string {
	if basis == models.BasisEstimated {
		return fmt.Sprintf("~%.0f km away", km)
	}
	return fmt.Sprintf("%.1f km away", km)
}

func summarize(m models.MatchResult) models.ProviderSummary {
	p := m.Provider
	s := models.ProviderSummary{
		ID:                p.ID,
		Type:              p.Kind,
		Name:              strings.TrimSpace(p.Name),
		Distance:          FormatDistance(m.DistanceKm, m.DistanceBasis),
		DistanceKm:        math.Round(m.DistanceKm*10) / 10,
		DistanceBasis:     m.DistanceBasis,
		Rating:            placeholderRating,
		Specialties:       specialtiesOf(p),
		Address:           orPlaceholder(p.Location.Address, placeholderAddress),
		City:              strings.TrimSpace(p.Location.City),
		State:             strings.TrimSpace(p.Location.State),
		EmergencyServices: p.EmergencyServices,
		Contact: models.ContactSummary{
			Phone:   orPlaceholder(p.Contact.Phone, placeholderContact),
			Email:   orPlaceholder(p.Contact.Email, placeholderContact),
			Website: strings.TrimSpace(p.Contact.Website),
		},
	}
	if p.Rating != nil {
		s.Rating = fmt.Sprintf("%.1f", *p.Rating)
	}
	if p.HasCoordinates() {
		c := *p.Location.Coordinates
		s.Coordinates = &c
	}

	switch p.Kind {
	case models.KindDoctor:
		s.Specialization = strings.TrimSpace(p.Specialization)
		s.Qualification = strings.TrimSpace(p.Qualification)
		s.Hospital = strings.TrimSpace(p.HospitalName)
		s.Experience = placeholderExperience
		if p.ExperienceYears != nil {
			s.Experience = pluralize(*p.ExperienceYears, "year")
		}
		s.ConsultationFee = placeholderFee
		if p.ConsultationFee != nil {
			s.ConsultationFee = fmt.Sprintf("₹%.0f", *p.ConsultationFee)
		}
	case models.KindHospital:
		if p.BedCount != nil {
			s.Beds = pluralize(*p.BedCount, "bed")
		}
	}
	return s
}

func specialtiesOf(p models.Provider) []string {
	out := make([]string, 0, len(p.Specialties)+1)
	for _, sp := range p.Specialties {
		if sp = strings.TrimSpace(sp); sp != "" {
			out = append(out, sp)
		}
	}
	if len(out) == 0 && strings.TrimSpace(p.Specialization) != "" {
		out = append(out, strings.TrimSpace(p.Specialization))
	}
	return out
}

func orPlaceholder(v, placeholder string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return placeholder
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
