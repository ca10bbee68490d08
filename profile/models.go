package profile

import (
	"encoding/json"
	"time"
)

// CreatorProfile is the onboarding record describing one content creator.
// It is owned by a single user and is read-only from this module's perspective.
type CreatorProfile struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// Section 1: brand and identity.
	FullName          *string  `json:"full_name,omitempty"`
	Age               *int     `json:"age,omitempty"`
	Location          *string  `json:"location,omitempty"`
	PrimaryLanguage   *string  `json:"primary_language,omitempty"`
	MainFocusPlatform *string  `json:"main_focus_platform,omitempty"`
	OtherPlatforms    *string  `json:"other_platforms,omitempty"`
	Platforms         []string `json:"platforms,omitempty"`
	PrimaryNiche      *string  `json:"primary_niche,omitempty"`
	SecondaryNiches   *string  `json:"secondary_niches,omitempty"`
	TargetAudience    []string `json:"target_audience,omitempty"`
	BrandWords        *string  `json:"brand_words,omitempty"`
	BrandPersonality  *string  `json:"brand_personality,omitempty"`
	TotalFollowers    *string  `json:"total_followers,omitempty"`
	AverageViews      *string  `json:"average_views,omitempty"`
	AudienceLocations *string  `json:"audience_locations,omitempty"`
	AudienceAgeRange  *string  `json:"audience_age_range,omitempty"`

	// Section 2: content style and workflow.
	ContentFormats      []string `json:"content_formats,omitempty"`
	TypicalLengthNumber *int     `json:"typical_length_number,omitempty"`
	TypicalLengthUnit   *string  `json:"typical_length_unit,omitempty"`
	EditingMusicStyle   *string  `json:"editing_music_style,omitempty"`
	PostingFrequency    *string  `json:"posting_frequency,omitempty"`
	ContentPillars      *string  `json:"content_pillars,omitempty"`
	FilmingStyle        *string  `json:"filming_style,omitempty"`
	EditingStyle        *string  `json:"editing_style,omitempty"`
	ToolsUsed           *string  `json:"tools_used,omitempty"`
	TeamSize            *string  `json:"team_size,omitempty"`
	TimePerWeek         *string  `json:"time_per_week,omitempty"`
	ShortTermGoals      *string  `json:"short_term_goals,omitempty"`
	LongTermGoals       *string  `json:"long_term_goals,omitempty"`

	// Section 3: growth, monetization and AI personalization.
	Strengths             *string  `json:"strengths,omitempty"`
	BiggestChallenge      *string  `json:"biggest_challenge,omitempty"`
	IncomeStreams         []string `json:"income_streams,omitempty"`
	MonetizationStage     *string  `json:"monetization_stage,omitempty"`
	RevenueRange          *string  `json:"revenue_range,omitempty"`
	BrandTypesToAvoid     *string  `json:"brand_types_to_avoid,omitempty"`
	CollaborationInterest *string  `json:"collaboration_interest,omitempty"`
	AIHelpPreferences     []string `json:"ai_help_preferences,omitempty"`
	PreferredTone         *string  `json:"preferred_tone,omitempty"`
	TopicsToAvoid         *string  `json:"topics_to_avoid,omitempty"`
	NicheFocus            *string  `json:"niche_focus,omitempty"`

	// Setup progress.
	IsSetupComplete bool      `json:"is_setup_complete"`
	CurrentStep     int       `json:"current_step"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// InstagramCreatorProfile is the externally produced deep-research record about a
// creator's Instagram presence. One row exists per (user, handle) pair.
type InstagramCreatorProfile struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	FullName         *string  `json:"full_name,omitempty"`
	Biography        *string  `json:"biography,omitempty"`
	Category         *string  `json:"category,omitempty"`
	FollowersCount   *int64   `json:"followers_count,omitempty"`
	FollowingCount   *int64   `json:"following_count,omitempty"`
	PostsCount       *int64   `json:"posts_count,omitempty"`
	EngagementRate   *float64 `json:"engagement_rate,omitempty"`
	PostingFrequency *string  `json:"posting_frequency,omitempty"`
	ContentStyle     *string  `json:"content_style,omitempty"`
	BrandVoice       *string  `json:"brand_voice,omitempty"`
	AudienceSummary  *string  `json:"audience_summary,omitempty"`
	Summary          *string  `json:"summary,omitempty"`

	// JSON arrays of loosely typed objects written by the research pipeline.
	KeyContentThemes              json.RawMessage `json:"key_content_themes,omitempty"`
	RepresentativeContentExamples json.RawMessage `json:"representative_content_examples,omitempty"`
	KeyHashtags                   json.RawMessage `json:"key_hashtags,omitempty"`

	// RawAnalysis holds the unparsed research payload when structured extraction failed.
	RawAnalysis json.RawMessage `json:"raw_analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
