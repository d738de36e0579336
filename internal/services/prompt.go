package services

import (
	"fmt"
	"strings"
)

// MissingValue stands in for any candidate field that was not extracted.
const MissingValue = "unknown"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildPersonalFieldsPrompt asks for contact details only.
func (pb *PromptBuilder) BuildPersonalFieldsPrompt(cvText string) string {
	return fmt.Sprintf(`You are an expert extraction algorithm.
Only extract relevant information from the text.
If you do not know the value of an attribute asked to extract, omit the attribute.

Extract the following information from this CV text:
- telephone: Phone number
- city: City/location
- birthdate: Date of birth

Return a single JSON object with the keys "telephone", "city" and "birthdate".

CV Text:
%s`, cvText)
}

func (pb *PromptBuilder) BuildQualificationsPrompt(cvText string) string {
	return fmt.Sprintf(`You are an expert extraction algorithm.
Only extract relevant information from the text.
If you do not know the value of an attribute asked to extract, omit the attribute.

Extract the following information from this CV text:
- education_summary: Summary of the academic career. Focus on high school and university studies. Summarize in 100 words maximum and include grades if available.
- job_history_summary: Work history summary. Focus on the most recent work experiences. Summarize in 100 words maximum.
- skills: The candidate's technical skills, meaning the software and frameworks they are proficient in, as a JSON array of strings.

Return a single JSON object with the keys "education_summary", "job_history_summary" and "skills".

CV Text:
%s`, cvText)
}

// BuildSummaryPrompt embeds every candidate field, using MissingValue for the absent ones.
func (pb *PromptBuilder) BuildSummaryPrompt(fields CandidateFields) string {
	return fmt.Sprintf(`Write a concise summary of the following:

City: %s
Birthdate: %s
Educational qualification: %s
Job History: %s
Skills: %s

Use 100 words or less. Be concise and conversational.`,
		orMissing(fields.City),
		orMissing(fields.Birthdate),
		orMissing(fields.EducationSummary),
		orMissing(fields.JobHistorySummary),
		skillsOrMissing(fields.Skills),
	)
}

func (pb *PromptBuilder) BuildScoringPrompt(summary, profileText string) string {
	return fmt.Sprintf(`You are an HR expert and need to assess if the candidate aligns with the profile the company is looking for.
You must give a score from 1 to 10, where 1 means the candidate is not at all aligned with the requirements,
while 10 means they are the ideal candidate because they perfectly match the desired profile.

Additionally, explain why you gave that score in the consideration field.

Profile Wanted:
%s

Candidate:
%s

Return your response as a JSON object with a numeric "vote" field (score 1-10) and a "consideration" field (explanation).`,
		profileText, summary)
}

// BuildProfileQuery is the text embedded to search the profile index for a role.
func (pb *PromptBuilder) BuildProfileQuery(role string) string {
	return fmt.Sprintf("Job profile, requirements and qualifications for the %s role", role)
}

// FormatProfileMatches joins indexed profile chunks into one requirements text.
func FormatProfileMatches(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for _, result := range results {
		if text := strings.TrimSpace(result.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n")
}

func orMissing(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return MissingValue
	}
	return strings.TrimSpace(*v)
}

func skillsOrMissing(skills []string) string {
	if len(skills) == 0 {
		return MissingValue
	}
	return FormatBullets(skills)
}

// FormatBullets renders a list as "- item" lines.
func FormatBullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}
