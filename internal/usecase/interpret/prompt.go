package interpret

import "strings"

const interpretPrompt = `Extract the main topics and interests from this course search query.

Query: "{query}"

Return a JSON object with:
- "topics": list of 3-5 key topics/subjects the user is interested in
- "interpretation": one sentence describing what the user is looking for

Common patterns to recognize:
- "easy" or "bird course" → introductory, beginner-friendly, accessible, low workload
- "breadth" or "WQB" → general education, breadth requirement, diverse topics
- "no prereqs" or "no prerequisites" → open enrollment, foundational, entry-level
- "interesting" → engaging, unique perspectives, thought-provoking

Example outputs:
{"topics": ["psychology", "human behavior", "cognition"], "interpretation": "Looking for courses about how people think and make decisions"}
{"topics": ["introductory", "accessible", "beginner-friendly", "low workload"], "interpretation": "Looking for an easy, manageable course with lighter workload"}
{"topics": ["general education", "breadth requirement", "diverse disciplines"], "interpretation": "Looking for a course that fulfills breadth/WQB requirements"}

Return ONLY valid JSON, no other text.`

// BuildPrompt renders the interpretation prompt for query.
func BuildPrompt(query string) string {
	return strings.Replace(interpretPrompt, "{query}", query, 1)
}
