package domain

import "strings"

type Skill struct {
	ID    uint    `gorm:"primaryKey"`
	Name  string  `gorm:"size:100;uniqueIndex;not null"`
	Level *string `gorm:"size:30"`
}

// NormalizeSkillNames trims, drops empties and de-duplicates case-insensitively,
// keeping the first spelling seen.
func NormalizeSkillNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
