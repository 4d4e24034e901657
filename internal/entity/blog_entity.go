package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BlogType string

const (
	BlogTypeRestaurant BlogType = "RESTAURANT"
	BlogTypeGeneral    BlogType = "GENERAL"
)

// Brief drives one generation. Exactly one of Restaurant or General is set,
// matching Type.
type Brief struct {
	Type       BlogType
	Restaurant *RestaurantBrief
	General    *GeneralBrief

	Mood         string
	SpecialNotes string
	Rating       int
	StyleSample  string
}

type RestaurantBrief struct {
	Name     string
	Location string
	MainMenu string
}

type GeneralBrief struct {
	Subject  string
	Category string
}

var (
	ErrBriefUnknownType        = errors.New("brief type must be RESTAURANT or GENERAL")
	ErrBriefVariantMismatch    = errors.New("brief variant does not match its type")
	ErrBriefRestaurantRequired = errors.New("식당 이름과 위치는 필수 정보입니다")
	ErrBriefGeneralRequired    = errors.New("주제와 카테고리는 필수 정보입니다")
	ErrBriefRatingOutOfRange   = errors.New("rating must be between 0 and 5")
)

// Validate checks the brief is well-formed for its variant.
func (b *Brief) Validate() error {
	switch b.Type {
	case BlogTypeRestaurant:
		if b.Restaurant == nil || b.General != nil {
			return ErrBriefVariantMismatch
		}
		if strings.TrimSpace(b.Restaurant.Name) == "" || strings.TrimSpace(b.Restaurant.Location) == "" {
			return ErrBriefRestaurantRequired
		}
	case BlogTypeGeneral:
		if b.General == nil || b.Restaurant != nil {
			return ErrBriefVariantMismatch
		}
		if strings.TrimSpace(b.General.Subject) == "" || strings.TrimSpace(b.General.Category) == "" {
			return ErrBriefGeneralRequired
		}
	default:
		return ErrBriefUnknownType
	}
	if b.Rating < 0 || b.Rating > 5 {
		return ErrBriefRatingOutOfRange
	}
	return nil
}

// Photo is one encoded still image supplied with a brief.
type Photo struct {
	MIMEType string
	Data     []byte
}

type SectionType string

const (
	SectionText     SectionType = "text"
	SectionImage    SectionType = "image"
	SectionSubtitle SectionType = "subtitle"
	SectionSummary  SectionType = "summary"
)

// SectionTypes is the closed set of section discriminants.
var SectionTypes = []SectionType{SectionText, SectionImage, SectionSubtitle, SectionSummary}

func (t SectionType) Valid() bool {
	for _, s := range SectionTypes {
		if s == t {
			return true
		}
	}
	return false
}

type Section struct {
	Type       SectionType `json:"type"`
	Content    string      `json:"content"`
	ImageIndex *int        `json:"image_index,omitempty"`
}

type GeneratedBlog struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Tags     []string  `json:"tags"`
}

// GeneratedPost is a successful generation persisted for the owner.
type GeneratedPost struct {
	Id         uuid.UUID
	ProfileId  string
	AttemptId  uuid.UUID
	BlogType   BlogType
	Blog       GeneratedBlog
	PhotoPaths []string
	CreatedAt  time.Time
}
