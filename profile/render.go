package profile

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Fallback strings returned (and cached) when a real profile cannot be produced.
const (
	CreatorProfileUnavailable        = "Creator profile unavailable."
	InstagramIntelligenceUnavailable = "Instagram creator intelligence unavailable: deep research analysis has not been completed yet."
)

// InstagramBanner opens every rendered Instagram intelligence block.
const InstagramBanner = "=== INSTAGRAM CREATOR INTELLIGENCE (DEEP RESEARCH) ==="

// IsFallback reports whether s is exactly one of the fallback strings.
func IsFallback(s string) bool {
	return s == CreatorProfileUnavailable || s == InstagramIntelligenceUnavailable
}

// RenderCreatorProfile renders p into the three-section prompt block.
// The layout is consumed verbatim by prompt assembly; changing it is a breaking change.
func RenderCreatorProfile(p *CreatorProfile) string {
	if p == nil {
		p = &CreatorProfile{}
	}
	lines := []string{
		"Section 1 – Creator Profile & Brand",
		"Full Name: " + FormatField(p.FullName),
		"Age: " + FormatField(p.Age),
		"Location: " + FormatField(p.Location),
		"Primary Language: " + FormatField(p.PrimaryLanguage),
		"Main Focus Platform: " + FormatField(p.MainFocusPlatform),
		"Other Platforms: " + FormatField(p.OtherPlatforms),
		"Niche: " + FormatField(p.PrimaryNiche),
		"Target Audience: " + FormatList(p.TargetAudience),
		"Brand Words: " + FormatField(p.BrandWords),
		"Followers: " + FormatField(p.TotalFollowers),
		"Average Views: " + FormatField(p.AverageViews),
		"",
		"Section 2 – Content Style & Workflow",
		"Content Formats: " + FormatList(p.ContentFormats),
		"Typical Length & Unit: " + FormatField(p.TypicalLengthNumber) + " " + FormatField(p.TypicalLengthUnit),
		"Inspirations/Competitors: " + FormatField(p.EditingMusicStyle),
		"Short-Term Goals (3 months): " + FormatField(p.ShortTermGoals),
		"Long-Term Goals (1–3 years): " + FormatField(p.LongTermGoals),
		"",
		"Section 3 – Growth, Monetization & AI Personalization",
		"Biggest Strengths: " + FormatField(p.Strengths),
		"Biggest Challenges: " + FormatField(p.BiggestChallenge),
		"Income Streams: " + FormatList(p.IncomeStreams),
		"Brand Types to Avoid: " + FormatField(p.BrandTypesToAvoid),
		"AI Assistance Preferences: " + FormatList(p.AIHelpPreferences),
		"Content Exploration Mode: " + FormatField(p.NicheFocus),
	}
	return strings.Join(lines, "\n")
}

// RenderInstagramIntelligence renders p as a banner header, a blank line and
// the labeled intelligence fields.
func RenderInstagramIntelligence(p *InstagramCreatorProfile) string {
	if p == nil {
		p = &InstagramCreatorProfile{}
	}

	handle := Placeholder
	if u := strings.TrimSpace(p.Username); u != "" {
		handle = "@" + strings.TrimPrefix(u, "@")
	}
	analyzed := Placeholder
	if !p.CreatedAt.IsZero() {
		analyzed = p.CreatedAt.UTC().Format("2006-01-02")
	}

	header := []string{
		InstagramBanner,
		"Account: " + handle,
		"Analyzed: " + analyzed,
	}

	themes := FormatJSONArray(p.KeyContentThemes)
	examples := FormatJSONArray(p.RepresentativeContentExamples)
	hashtags := FormatJSONArray(p.KeyHashtags)

	body := []string{
		"Full Name: " + FormatField(p.FullName),
		"Category: " + FormatField(p.Category),
		"Biography: " + FormatField(p.Biography),
		"Followers: " + FormatField(p.FollowersCount),
		"Following: " + FormatField(p.FollowingCount),
		"Posts: " + FormatField(p.PostsCount),
		"Engagement Rate: " + FormatField(p.EngagementRate),
		"Posting Frequency: " + FormatField(p.PostingFrequency),
		"Content Style: " + FormatField(p.ContentStyle),
		"Brand Voice: " + FormatField(p.BrandVoice),
		"Audience: " + FormatField(p.AudienceSummary),
		"Key Content Themes: " + themes,
		"Representative Content Examples: " + examples,
		"Key Hashtags: " + hashtags,
		"Summary: " + FormatField(p.Summary),
	}

	if themes == Placeholder && examples == Placeholder && hashtags == Placeholder {
		if raw := compactJSON(p.RawAnalysis); raw != "" {
			body = append(body, "Raw Analysis: "+raw)
		}
	}

	return strings.Join(header, "\n") + "\n\n" + strings.Join(body, "\n")
}

func compactJSON(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return strings.TrimSpace(string(trimmed))
	}
	return buf.String()
}
