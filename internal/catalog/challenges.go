package catalog

import "rada-learning/internal/models"

// Challenges is the static civic challenge tree shown from Home and Browse.
// It never interacts with lesson or quiz progress.
var challenges = []models.Challenge{
	{
		ID:       "attend-baraza",
		Title:    "Attend a County Baraza",
		Summary:  "Take part in a public participation forum in your ward.",
		Category: "Participation",
		XPReward: 50,
		Steps: []models.ChallengeStep{
			{Title: "Find the forum", Body: "Check your county assembly website or notice boards for upcoming public participation dates."},
			{Title: "Prepare a question", Body: "Pick one budget or bill item that affects your ward and write down what you want to ask."},
			{Title: "Attend and speak", Body: "Register at the venue, listen to the presentation and raise your question during the open session."},
		},
	},
	{
		ID:       "read-a-bill",
		Title:    "Read a Bill Before Parliament",
		Summary:  "Understand what a bill proposes before it becomes law.",
		Category: "Legislation",
		XPReward: 30,
		Steps: []models.ChallengeStep{
			{Title: "Pick a bill", Body: "Choose a bill from the National Assembly's current order paper."},
			{Title: "Read the memorandum", Body: "The memorandum of objects and reasons summarises what the bill changes."},
			{Title: "Share a summary", Body: "Explain the bill in three sentences to a friend or on the community board."},
		},
	},
	{
		ID:       "know-your-mca",
		Title:    "Know Your MCA",
		Summary:  "Identify your Member of County Assembly and how to reach them.",
		Category: "Representation",
		XPReward: 20,
		Steps: []models.ChallengeStep{
			{Title: "Look up your ward", Body: "Use your voter registration details to confirm your ward."},
			{Title: "Find contact details", Body: "Note the MCA's office location and public contact channels."},
		},
	},
}

func Challenges() []models.Challenge {
	out := make([]models.Challenge, len(challenges))
	copy(out, challenges)
	return out
}

// Challenge returns the challenge with id, or nil.
func Challenge(id string) *models.Challenge {
	for i := range challenges {
		if challenges[i].ID == id {
			c := challenges[i]
			return &c
		}
	}
	return nil
}
