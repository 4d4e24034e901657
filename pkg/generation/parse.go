package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/pkg/sanitize"
)

// ErrSchemaViolation marks a response that does not satisfy the blog schema.
var ErrSchemaViolation = errors.New("response violates blog schema")

type rawSection struct {
	Type       *string          `json:"type"`
	Content    *string          `json:"content"`
	ImageIndex *json.RawMessage `json:"imageIndex"`
}

type rawBlog struct {
	Title    *string      `json:"title"`
	Sections []rawSection `json:"sections"`
	Tags     []string     `json:"tags"`
}

func violation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}

// Parse decodes and validates a model response. Unknown fields are ignored;
// everything the schema requires is checked. Text is passed through s.
func Parse(raw string, photoCount int, s sanitize.Sanitizer) (*entity.GeneratedBlog, error) {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return nil, violation("empty response")
	}

	var rb rawBlog
	if err := json.Unmarshal([]byte(cleaned), &rb); err != nil {
		return nil, violation("invalid JSON: %v", err)
	}

	if rb.Title == nil || strings.TrimSpace(*rb.Title) == "" {
		return nil, violation("title is required")
	}
	if rb.Sections == nil {
		return nil, violation("sections is required")
	}
	if len(rb.Sections) == 0 {
		return nil, violation("sections must not be empty")
	}
	if rb.Tags == nil {
		return nil, violation("tags is required")
	}

	blog := &entity.GeneratedBlog{
		Title:    s.Text(*rb.Title),
		Sections: make([]entity.Section, 0, len(rb.Sections)),
		Tags:     make([]string, 0, len(rb.Tags)),
	}

	for i, rs := range rb.Sections {
		section, err := parseSection(i, rs, photoCount, s)
		if err != nil {
			return nil, err
		}
		blog.Sections = append(blog.Sections, section)
	}

	for _, tag := range rb.Tags {
		if t := s.Text(tag); t != "" {
			blog.Tags = append(blog.Tags, t)
		}
	}
	return blog, nil
}

func parseSection(i int, rs rawSection, photoCount int, s sanitize.Sanitizer) (entity.Section, error) {
	if rs.Type == nil {
		return entity.Section{}, violation("sections[%d].type is required", i)
	}
	st := entity.SectionType(*rs.Type)
	if !st.Valid() {
		return entity.Section{}, violation("sections[%d].type %q is not allowed", i, *rs.Type)
	}
	if rs.Content == nil {
		return entity.Section{}, violation("sections[%d].content is required", i)
	}

	section := entity.Section{Type: st, Content: s.Text(*rs.Content)}

	hasIndex := rs.ImageIndex != nil && string(*rs.ImageIndex) != "null"
	if st != entity.SectionImage {
		if hasIndex {
			return entity.Section{}, violation("sections[%d].imageIndex is only allowed on image sections", i)
		}
		return section, nil
	}

	if !hasIndex {
		return entity.Section{}, violation("sections[%d].imageIndex is required for image sections", i)
	}
	idx, err := integerValue(*rs.ImageIndex)
	if err != nil {
		return entity.Section{}, violation("sections[%d].imageIndex %s", i, err)
	}
	if idx < 0 || idx >= photoCount {
		return entity.Section{}, violation("sections[%d].imageIndex %d out of range [0,%d)", i, idx, photoCount)
	}
	section.ImageIndex = &idx
	return section, nil
}

// integerValue accepts a JSON number with no fractional part.
func integerValue(raw json.RawMessage) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(f), nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
