package profile

// Mock value pools for first-seen users. A new profile is populated with a
// random pick from each pool so personalization has something to work with
// before the user sets real values.

var mockNames = []string{
	"Alex", "Sam", "Jordan", "Taylor", "Casey", "Morgan", "Riley", "Quinn",
}

var mockCities = []string{
	"San Francisco", "New York", "London", "Tokyo", "Berlin", "Sydney", "Toronto", "Paris",
}

var mockInterests = []string{
	"artificial intelligence", "machine learning", "data science", "web development",
	"mobile apps", "cybersecurity", "blockchain", "cloud computing", "IoT", "robotics",
	"quantum computing", "biotechnology", "renewable energy", "space exploration",
	"music", "photography", "cooking", "travel", "fitness", "reading",
}

var mockProfessions = []string{
	"software engineer", "data scientist", "product manager", "designer",
	"researcher", "consultant", "entrepreneur", "student", "teacher", "analyst",
}

var mockExpertiseLevels = []string{"beginner", "intermediate", "expert"}

var mockTopics = []string{
	"AI and machine learning", "web development", "data analysis",
	"cybersecurity", "cloud computing", "mobile development", "DevOps",
}

func (s *Store) newDefault(userID string) Profile {
	now := s.clock.Now()
	return Profile{
		UserID:          userID,
		Name:            mockNames[s.rng.Intn(len(mockNames))],
		City:            mockCities[s.rng.Intn(len(mockCities))],
		Profession:      mockProfessions[s.rng.Intn(len(mockProfessions))],
		ExpertiseLevel:  mockExpertiseLevels[s.rng.Intn(len(mockExpertiseLevels))],
		Interests:       s.sample(mockInterests, 2+s.rng.Intn(3)),
		PreferredTopics: s.sample(mockTopics, 1+s.rng.Intn(3)),
		CreatedAt:       now,
		LastUpdated:     now,
	}
}

// sample picks n distinct values from pool, preserving pick order.
func (s *Store) sample(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}
