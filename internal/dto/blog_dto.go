package dto

import (
	"time"

	"github.com/google/uuid"
)

// GenerateBlogRequest is the multipart form of POST /api/blog/generate.
// Photos arrive as "photos" file parts.
type GenerateBlogRequest struct {
	WizardSessionId string `form:"wizard_session_id" validate:"required,max=64"`
	Type            string `form:"type" validate:"required,oneof=RESTAURANT GENERAL"`
	Name            string `form:"name" validate:"max=200"`
	Location        string `form:"location" validate:"max=200"`
	MainMenu        string `form:"main_menu" validate:"max=500"`
	Subject         string `form:"subject" validate:"max=200"`
	Category        string `form:"category" validate:"max=100"`
	Mood            string `form:"mood" validate:"max=200"`
	SpecialNotes    string `form:"special_notes" validate:"max=2000"`
	Rating          int    `form:"rating" validate:"min=0,max=5"`
	StyleId         string `form:"style_id"`
}

type SectionResponse struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	ImageIndex *int   `json:"image_index,omitempty"`
}

type BlogPostResponse struct {
	Id         uuid.UUID         `json:"id"`
	AttemptId  uuid.UUID         `json:"attempt_id"`
	BlogType   string            `json:"blog_type"`
	Title      string            `json:"title"`
	Sections   []SectionResponse `json:"sections"`
	Tags       []string          `json:"tags"`
	PhotoPaths []string          `json:"photo_paths,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type GenerateBlogResponse struct {
	Post             BlogPostResponse `json:"post"`
	RemainingCredits int              `json:"remaining_credits"`
	Unlimited        bool             `json:"unlimited"`
}

type BlogPostListItem struct {
	Id        uuid.UUID `json:"id"`
	BlogType  string    `json:"blog_type"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}
