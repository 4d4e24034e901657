package mapper

import (
	"encoding/json"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/model"

	"gorm.io/datatypes"
)

type PostMapper struct{}

func NewPostMapper() *PostMapper {
	return &PostMapper{}
}

func (m *PostMapper) ToEntity(p *model.GeneratedPost) *entity.GeneratedPost {
	if p == nil {
		return nil
	}
	var sections []entity.Section
	var tags []string
	var paths []string
	_ = json.Unmarshal(p.Sections, &sections)
	_ = json.Unmarshal(p.Tags, &tags)
	if len(p.PhotoPaths) > 0 {
		_ = json.Unmarshal(p.PhotoPaths, &paths)
	}
	return &entity.GeneratedPost{
		Id:        p.Id,
		ProfileId: p.ProfileId,
		AttemptId: p.AttemptId,
		BlogType:  entity.BlogType(p.BlogType),
		Blog: entity.GeneratedBlog{
			Title:    p.Title,
			Sections: sections,
			Tags:     tags,
		},
		PhotoPaths: paths,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *PostMapper) ToModel(p *entity.GeneratedPost) *model.GeneratedPost {
	if p == nil {
		return nil
	}
	sections, _ := json.Marshal(p.Blog.Sections)
	tags, _ := json.Marshal(p.Blog.Tags)
	paths := p.PhotoPaths
	if paths == nil {
		paths = []string{}
	}
	pathsJSON, _ := json.Marshal(paths)
	return &model.GeneratedPost{
		Id:         p.Id,
		ProfileId:  p.ProfileId,
		AttemptId:  p.AttemptId,
		BlogType:   string(p.BlogType),
		Title:      p.Blog.Title,
		Sections:   datatypes.JSON(sections),
		Tags:       datatypes.JSON(tags),
		PhotoPaths: datatypes.JSON(pathsJSON),
		CreatedAt:  p.CreatedAt,
	}
}

func (m *PostMapper) ToEntities(posts []*model.GeneratedPost) []*entity.GeneratedPost {
	entities := make([]*entity.GeneratedPost, len(posts))
	for i, p := range posts {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
