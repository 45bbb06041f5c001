package analysis

import "fmt"

// Prompt inputs are truncated so a single request stays fast on local models.
const (
	maxChunkPromptChars       = 8000
	maxTimestampedPromptChars = 6000
)

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

func sectionsPrompt(chunkText string) string {
	return fmt.Sprintf(`Analyze this transcript and identify the most interesting sections. Look for:
- Controversial statements or claims
- Strong opinions or debates
- Important factual claims
- Emotional or dramatic moments
- Key arguments or reasoning

For each interesting section, provide:
1. Start phrase (first 5-10 words)
2. End phrase (last 5-10 words)
3. Category (controversy, claim, argument, emotional, or other)
4. Brief description (one sentence)

Format your response EXACTLY like this:

INTERESTING SECTIONS:
Section 1:
Start: "exact first few words"
End: "exact last few words"
Category: controversy
Description: Brief one-line description

Section 2:
Start: "exact first few words"
End: "exact last few words"
Category: claim
Description: Brief one-line description

BORING SECTIONS:
(List any boring parts to skip)

TRANSCRIPT:
%s`, truncate(chunkText, maxChunkPromptChars))
}

func quotesPrompt(section Section, timestamped string) string {
	return fmt.Sprintf(`Analyze this timestamped transcript section and extract the most significant quotes with their timestamps.

Category: %s
Description: %s

Extract 3-5 key quotes that exemplify this section. For each quote:
1. Include the exact timestamp [MM:SS]
2. Quote the exact words spoken
3. Explain why it's significant (1-2 sentences)

Format your response EXACTLY like this:

Key quotes:
1. Timestamp: [MM:SS]
   Quote: "exact words from transcript"
   Significance: Why this quote matters

2. Timestamp: [MM:SS]
   Quote: "exact words from transcript"
   Significance: Why this quote matters

TIMESTAMPED TRANSCRIPT:
%s`, section.Category, section.Description, truncate(timestamped, maxTimestampedPromptChars))
}

func summaryPrompt(title, sectionsSummary string) string {
	return fmt.Sprintf(`Provide a brief 2-3 sentence summary of this video based on the analysis of its content.
Focus on: What is the video about? What are the main topics or subjects? Who is speaking (if identifiable)?

Use the video title as additional context to help identify the subject matter and people involved.

Video title: %s

Analyzed sections:
%s

Provide a 2-3 sentence summary:`, title, sectionsSummary)
}

func tagsPrompt(sectionsContext, excerpt string) string {
	return fmt.Sprintf(`Analyze this video transcript and extract tags for categorization.

TASK: Extract two types of tags:
1. PEOPLE: Names of specific individuals mentioned or speaking
2. TOPICS: Main topics, themes, or subjects discussed

RULES:
- Return ONLY valid JSON, nothing else
- For people: Only extract proper names of real individuals (not generic terms like "doctor" or "host")
- For topics: Extract 3-8 main topics or themes
- Use title case for names
- Keep topic tags concise (1-3 words max)

JSON FORMAT:
{
  "people": ["Name One", "Name Two"],
  "topics": ["Topic One", "Topic Two"]
}

Section analysis context:
%s

Transcript excerpt:
%s

Tags (JSON only):`, sectionsContext, truncate(excerpt, maxChunkPromptChars))
}
