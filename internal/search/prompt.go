package search

import "fmt"

// IssueTaxonomy lists the digital-presence gaps the model is asked to look for.
var IssueTaxonomy = []string{
	`"No ChatBot" or "No AI Assistant"`,
	`"Manual Booking Only" (no online scheduling)`,
	`"Bad Recent Reviews" or "Low Rating"`,
	`"Outdated Website" or "Slow Mobile Site"`,
	`"Low Social Engagement"`,
}

const promptTemplate = `
You are an expert Digital Scout for a high-end marketing agency.

Task: Find 6-10 real local businesses in the %q industry in %q.

Tools:
1. Use Google Maps to verify their existence, exact location (lat/lng), and current rating.
2. Use Google Search to briefly analyze their digital presence (website, reviews snippet).

Analysis:
For each business, identify specific marketing "gaps" or problems based on likely scenarios for this industry or search snippets.
Look for things like:
%s
Output:
Return a STRICT JSON array of objects.
Ensure the output is valid JSON syntax.
Do not include any conversational text outside the JSON array.

Schema:
Array<{
  id: string (unique),
  name: string,
  address: string,
  rating: number (0 to 5),
  reviewCount: number (approximate),
  website: string (url or "N/A"),
  lat: number,
  lng: number,
  issues: string[] (1-3 identified problems),
  salesPitch: string (A punchy, 1-sentence sales pitch addressing their specific issue)
}>
`

// BuildPrompt returns the instruction sent to the model for one search.
func BuildPrompt(industry, city string) string {
	issues := ""
	for _, issue := range IssueTaxonomy {
		issues += "- " + issue + "\n"
	}
	return fmt.Sprintf(promptTemplate, industry, city, issues)
}
