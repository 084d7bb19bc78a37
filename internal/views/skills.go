package views

import (
	"math"
	"sort"

	"lifeadmin/internal/core"
)

// SkillStats summarizes the tracker. Average is over every skill, not
// started ones counting as zero.
type SkillStats struct {
	Total   int     `json:"total"`
	Started int     `json:"started"`
	Average float64 `json:"average"`
	Max     int     `json:"max"`
	Growth  string  `json:"growth"`
}

func Skills(s core.Skills) SkillStats {
	var st SkillStats
	sum := 0
	for _, cat := range s.Categories {
		for _, sk := range cat.Items {
			score := max(0, sk.Level.Score())
			st.Total++
			sum += score
			if score > 0 {
				st.Started++
			}
			st.Max = max(st.Max, score)
		}
	}
	if st.Total > 0 {
		st.Average = math.Round(float64(sum)/float64(st.Total)*10) / 10
	}
	st.Growth = GrowthLabel(st.Average)
	return st
}

// GrowthLabel names the band an average level falls in.
func GrowthLabel(avg float64) string {
	switch {
	case avg < 1:
		return "Starting"
	case avg < 2:
		return "Building"
	case avg < 3:
		return "Steady"
	case avg < 4:
		return "Strong"
	}
	return "Confident"
}

// CategoryNames lists the skill categories alphabetically.
func CategoryNames(s core.Skills) []string {
	names := make([]string, 0, len(s.Categories))
	for k := range s.Categories {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
