package domain

// LearnerProfile is the caller-side context attached to every AnalysisRequest.
type LearnerProfile struct {
	ProficiencyLevel string          `yaml:"proficiency_level"`
	InterestTopics   []InterestTopic `yaml:"interest_topics"`
	BlockedTopics    []string        `yaml:"blocked_topics"`
}

// Apply copies the profile fields into req. Vocabulary and favorites are
// filled separately from the wordbook.
func (p LearnerProfile) Apply(req AnalysisRequest) AnalysisRequest {
	req.ProficiencyLevel = p.ProficiencyLevel
	req.InterestTopics = p.InterestTopics
	req.BlockedTopics = p.BlockedTopics
	return req
}
