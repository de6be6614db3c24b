package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// LearnerProfile returns the profile from File when set, else from the inline values.
func (p ProfileConfig) LearnerProfile() (domain.LearnerProfile, error) {
	if p.File == "" {
		return domain.LearnerProfile{
			ProficiencyLevel: p.ProficiencyLevel,
			BlockedTopics:    p.BlockedTopics,
		}, nil
	}
	prof, err := LoadProfile(p.File)
	if err != nil {
		return domain.LearnerProfile{}, err
	}
	if prof.ProficiencyLevel == "" {
		prof.ProficiencyLevel = p.ProficiencyLevel
	}
	return prof, nil
}

// LoadProfile reads a YAML learner profile.
func LoadProfile(path string) (domain.LearnerProfile, error) {
	var prof domain.LearnerProfile

	data, err := os.ReadFile(path)
	if err != nil {
		return prof, fmt.Errorf("profile: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &prof); err != nil {
		return prof, fmt.Errorf("profile: parse %s: %w", path, err)
	}
	for i, t := range prof.InterestTopics {
		if t.ID == "" || t.Title == "" {
			return prof, fmt.Errorf("profile: interest_topics[%d]: id and title are required", i)
		}
	}
	return prof, nil
}
