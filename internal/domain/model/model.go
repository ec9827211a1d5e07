// Package model contains domain records passed between layers.
package model

import "time"

// Role identifies how an account participates in an event.
type Role string

// Roles accepted for review authors.
const (
	RoleParticipant Role = "participant"
	RoleJudge       Role = "judge"
	RoleOrganizer   Role = "organizer"
)

// Submission is a hackathon project entry. CorpusText carries the
// concatenated title, description and any fetched readme; a failed
// readme fetch simply yields shorter text, never an error here.
type Submission struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	TeamID      string    `json:"team_id"`
	TrackID     string    `json:"track_id"`
	Title       string    `json:"title"`
	CorpusText  string    `json:"corpus_text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SimilarityPair records one unordered pair of submissions whose cosine
// similarity met the detection threshold. Submission1ID < Submission2ID
// always holds so there is exactly one record per pair.
type SimilarityPair struct {
	EventID         string    `json:"event_id"`
	Submission1ID   string    `json:"submission1_id"`
	Submission2ID   string    `json:"submission2_id"`
	Score           float64   `json:"score"`
	PercentageMatch int       `json:"percentage_match"`
	DetectedAt      time.Time `json:"detected_at"`
	Reviewed        bool      `json:"reviewed"`
	ReviewedBy      string    `json:"reviewed_by,omitempty"`
	ReviewNotes     string    `json:"review_notes,omitempty"`
}

// PairKey returns the canonical key for an unordered submission pair.
func PairKey(id1, id2 string) (string, string) {
	if id2 < id1 {
		return id2, id1
	}
	return id1, id2
}

// Review is a rating left on an event by a participant, judge or organizer.
type Review struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	AuthorID  string    `json:"author_id"`
	Role      Role      `json:"role"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FlagReason selects which ReviewFlag metadata fields are meaningful.
type FlagReason string

// Flag reasons emitted by the rating integrity analyzer.
const (
	ReasonOutlierRating     FlagReason = "outlier_rating"
	ReasonInvalidUser       FlagReason = "invalid_user"
	ReasonSuspiciousPattern FlagReason = "suspicious_pattern"
)

// FlagMetadata is the tagged payload attached to a ReviewFlag. Which
// fields are set depends on the flag reason.
type FlagMetadata struct {
	MADScore           float64 `json:"mad_score,omitempty"`
	EventAverageRating float64 `json:"event_average_rating,omitempty"`
	DetectionMethod    string  `json:"detection_method,omitempty"`
}

// ReviewFlag marks a review as statistically or procedurally suspect.
// At most one active flag exists per (review, reason).
type ReviewFlag struct {
	ReviewID  string       `json:"review_id"`
	EventID   string       `json:"event_id"`
	Reason    FlagReason   `json:"reason"`
	Score     float64      `json:"score,omitempty"`
	Metadata  FlagMetadata `json:"metadata"`
	FlaggedAt time.Time    `json:"flagged_at"`
}

// FlaggedReview joins a flag with its review. Review is nil when the
// review has been deleted since the flag was raised.
type FlaggedReview struct {
	Flag   ReviewFlag `json:"flag"`
	Review *Review    `json:"review,omitempty"`
}

// EvaluationScore is one judge's score sheet for a submission in a
// round. Unique per (SubmissionID, JudgeID, Round); later writes for
// the same key replace the record while the round is open.
type EvaluationScore struct {
	EventID        string             `json:"event_id"`
	SubmissionID   string             `json:"submission_id"`
	JudgeID        string             `json:"judge_id"`
	Round          int                `json:"round"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	TotalScore     float64            `json:"total_score"`
	SubmittedAt    time.Time          `json:"submitted_at"`
}

// Key returns the upsert key for the score.
func (s EvaluationScore) Key() string {
	return s.SubmissionID + "|" + s.JudgeID
}

// LeaderboardEntry is derived state, recomputed from evaluation scores
// on every accepted write. PreviousRank is 0 until a second
// recomputation has happened for the round.
type LeaderboardEntry struct {
	TeamID          string  `json:"team_id"`
	SubmissionID    string  `json:"submission_id"`
	TrackID         string  `json:"track_id"`
	Round           int     `json:"round"`
	AggregateScore  float64 `json:"aggregate_score"`
	Rank            int     `json:"rank"`
	PreviousRank    int     `json:"previous_rank"`
	JudgesCompleted int     `json:"judges_completed"`
	TotalJudges     int     `json:"total_judges"`
}

// RoundStatus tracks the one-way OPEN -> FINALIZED transition for an
// (event, round) pair.
type RoundStatus struct {
	EventID     string    `json:"event_id"`
	Round       int       `json:"round"`
	IsFinalized bool      `json:"is_finalized"`
	FinalizedAt time.Time `json:"finalized_at,omitempty"`
	FinalizedBy string    `json:"finalized_by,omitempty"`
}
