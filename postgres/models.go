package postgres

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/jonwraymond/creatorcontext/profile"
)

type creatorProfileModel struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid"`

	FullName          *string        `gorm:"column:full_name"`
	Age               *int           `gorm:"column:age"`
	Location          *string        `gorm:"column:location"`
	PrimaryLanguage   *string        `gorm:"column:primary_language"`
	MainFocusPlatform *string        `gorm:"column:main_focus_platform"`
	OtherPlatforms    *string        `gorm:"column:other_platforms"`
	Platforms         pq.StringArray `gorm:"column:platforms;type:text[]"`
	PrimaryNiche      *string        `gorm:"column:primary_niche"`
	SecondaryNiches   *string        `gorm:"column:secondary_niches"`
	TargetAudience    pq.StringArray `gorm:"column:target_audience;type:text[]"`
	BrandWords        *string        `gorm:"column:brand_words"`
	BrandPersonality  *string        `gorm:"column:brand_personality"`
	TotalFollowers    *string        `gorm:"column:total_followers"`
	AverageViews      *string        `gorm:"column:average_views"`
	AudienceLocations *string        `gorm:"column:audience_locations"`
	AudienceAgeRange  *string        `gorm:"column:audience_age_range"`

	ContentFormats      pq.StringArray `gorm:"column:content_formats;type:text[]"`
	TypicalLengthNumber *int           `gorm:"column:typical_length_number"`
	TypicalLengthUnit   *string        `gorm:"column:typical_length_unit"`
	EditingMusicStyle   *string        `gorm:"column:editing_music_style"`
	PostingFrequency    *string        `gorm:"column:posting_frequency"`
	ContentPillars      *string        `gorm:"column:content_pillars"`
	FilmingStyle        *string        `gorm:"column:filming_style"`
	EditingStyle        *string        `gorm:"column:editing_style"`
	ToolsUsed           *string        `gorm:"column:tools_used"`
	TeamSize            *string        `gorm:"column:team_size"`
	TimePerWeek         *string        `gorm:"column:time_per_week"`
	ShortTermGoals      *string        `gorm:"column:short_term_goals"`
	LongTermGoals       *string        `gorm:"column:long_term_goals"`

	Strengths             *string        `gorm:"column:strengths"`
	BiggestChallenge      *string        `gorm:"column:biggest_challenge"`
	IncomeStreams         pq.StringArray `gorm:"column:income_streams;type:text[]"`
	MonetizationStage     *string        `gorm:"column:monetization_stage"`
	RevenueRange          *string        `gorm:"column:revenue_range"`
	BrandTypesToAvoid     *string        `gorm:"column:brand_types_to_avoid"`
	CollaborationInterest *string        `gorm:"column:collaboration_interest"`
	AIHelpPreferences     pq.StringArray `gorm:"column:ai_help_preferences;type:text[]"`
	PreferredTone         *string        `gorm:"column:preferred_tone"`
	TopicsToAvoid         *string        `gorm:"column:topics_to_avoid"`
	NicheFocus            *string        `gorm:"column:niche_focus"`

	IsSetupComplete bool      `gorm:"column:is_setup_complete"`
	CurrentStep     int       `gorm:"column:current_step"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (creatorProfileModel) TableName() string { return "creator_profiles" }

type instagramProfileModel struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid"`
	Username string    `gorm:"column:username"`

	FullName         *string  `gorm:"column:full_name"`
	Biography        *string  `gorm:"column:biography"`
	Category         *string  `gorm:"column:category"`
	FollowersCount   *int64   `gorm:"column:followers_count"`
	FollowingCount   *int64   `gorm:"column:following_count"`
	PostsCount       *int64   `gorm:"column:posts_count"`
	EngagementRate   *float64 `gorm:"column:engagement_rate"`
	PostingFrequency *string  `gorm:"column:posting_frequency"`
	ContentStyle     *string  `gorm:"column:content_style"`
	BrandVoice       *string  `gorm:"column:brand_voice"`
	AudienceSummary  *string  `gorm:"column:audience_summary"`
	Summary          *string  `gorm:"column:summary"`

	KeyContentThemes              *datatypes.JSON `gorm:"column:key_content_themes;type:jsonb"`
	RepresentativeContentExamples *datatypes.JSON `gorm:"column:representative_content_examples;type:jsonb"`
	KeyHashtags                   *datatypes.JSON `gorm:"column:key_hashtags;type:jsonb"`
	RawAnalysis                   *datatypes.JSON `gorm:"column:raw_analysis;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at"`
}

func (instagramProfileModel) TableName() string { return "instagram_creator_profiles" }

func toCreatorProfile(rec creatorProfileModel) *profile.CreatorProfile {
	return &profile.CreatorProfile{
		ID:     rec.ID.String(),
		UserID: rec.UserID.String(),

		FullName:          rec.FullName,
		Age:               rec.Age,
		Location:          rec.Location,
		PrimaryLanguage:   rec.PrimaryLanguage,
		MainFocusPlatform: rec.MainFocusPlatform,
		OtherPlatforms:    rec.OtherPlatforms,
		Platforms:         toStrings(rec.Platforms),
		PrimaryNiche:      rec.PrimaryNiche,
		SecondaryNiches:   rec.SecondaryNiches,
		TargetAudience:    toStrings(rec.TargetAudience),
		BrandWords:        rec.BrandWords,
		BrandPersonality:  rec.BrandPersonality,
		TotalFollowers:    rec.TotalFollowers,
		AverageViews:      rec.AverageViews,
		AudienceLocations: rec.AudienceLocations,
		AudienceAgeRange:  rec.AudienceAgeRange,

		ContentFormats:      toStrings(rec.ContentFormats),
		TypicalLengthNumber: rec.TypicalLengthNumber,
		TypicalLengthUnit:   rec.TypicalLengthUnit,
		EditingMusicStyle:   rec.EditingMusicStyle,
		PostingFrequency:    rec.PostingFrequency,
		ContentPillars:      rec.ContentPillars,
		FilmingStyle:        rec.FilmingStyle,
		EditingStyle:        rec.EditingStyle,
		ToolsUsed:           rec.ToolsUsed,
		TeamSize:            rec.TeamSize,
		TimePerWeek:         rec.TimePerWeek,
		ShortTermGoals:      rec.ShortTermGoals,
		LongTermGoals:       rec.LongTermGoals,

		Strengths:             rec.Strengths,
		BiggestChallenge:      rec.BiggestChallenge,
		IncomeStreams:         toStrings(rec.IncomeStreams),
		MonetizationStage:     rec.MonetizationStage,
		RevenueRange:          rec.RevenueRange,
		BrandTypesToAvoid:     rec.BrandTypesToAvoid,
		CollaborationInterest: rec.CollaborationInterest,
		AIHelpPreferences:     toStrings(rec.AIHelpPreferences),
		PreferredTone:         rec.PreferredTone,
		TopicsToAvoid:         rec.TopicsToAvoid,
		NicheFocus:            rec.NicheFocus,

		IsSetupComplete: rec.IsSetupComplete,
		CurrentStep:     rec.CurrentStep,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func toInstagramProfile(rec instagramProfileModel) *profile.InstagramCreatorProfile {
	return &profile.InstagramCreatorProfile{
		ID:       rec.ID.String(),
		UserID:   rec.UserID.String(),
		Username: rec.Username,

		FullName:         rec.FullName,
		Biography:        rec.Biography,
		Category:         rec.Category,
		FollowersCount:   rec.FollowersCount,
		FollowingCount:   rec.FollowingCount,
		PostsCount:       rec.PostsCount,
		EngagementRate:   rec.EngagementRate,
		PostingFrequency: rec.PostingFrequency,
		ContentStyle:     rec.ContentStyle,
		BrandVoice:       rec.BrandVoice,
		AudienceSummary:  rec.AudienceSummary,
		Summary:          rec.Summary,

		KeyContentThemes:              toRaw(rec.KeyContentThemes),
		RepresentativeContentExamples: toRaw(rec.RepresentativeContentExamples),
		KeyHashtags:                   toRaw(rec.KeyHashtags),
		RawAnalysis:                   toRaw(rec.RawAnalysis),

		CreatedAt: rec.CreatedAt,
	}
}

// toStrings keeps NULL arrays nil so they render as absent.
func toStrings(a pq.StringArray) []string {
	if a == nil {
		return nil
	}
	return []string(a)
}

func toRaw(j *datatypes.JSON) json.RawMessage {
	if j == nil || len(*j) == 0 {
		return nil
	}
	return json.RawMessage(*j)
}
