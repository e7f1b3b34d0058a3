package repository

import (
	"context"
	"errors"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	Create(ctx context.Context, name string) (*models.Tag, error)
	GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
	Popular(ctx context.Context, limit int) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository backed by gorm.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := cache.Aside(ctx, cache.TagsListKey, &tags, cache.TagsTTL, func() error {
		return r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	})
	if err != nil {
		return nil, models.NewInternalError("list tags", err)
	}
	return tags, nil
}

// GetByName returns (nil, nil) when no tag matches the normalized name.
func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("name = ?", models.NormalizeTagName(name)).
		First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError("get tag", err)
	}
	return &tag, nil
}

// Create inserts a new tag and fails with a conflict if the normalized name
// is already taken.
func (r *tagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	tag := models.Tag{Name: models.NormalizeTagName(name)}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError("Tag already exists")
		}
		return nil, models.NewInternalError("create tag", err)
	}
	cache.InvalidateTags(ctx)
	return &tag, nil
}

// GetOrCreate upserts a tag by normalized name. The insert races safely via
// ON CONFLICT DO NOTHING and the winner is read back afterwards.
func (r *tagRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	normalized := models.NormalizeTagName(name)

	res := r.db.WithContext(ctx).Exec(
		"INSERT INTO tags (name, created_at) VALUES (?, CURRENT_TIMESTAMP) ON CONFLICT (name) DO NOTHING",
		normalized,
	)
	if res.Error != nil {
		return nil, models.NewInternalError("upsert tag", res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateTags(ctx)
	}

	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", normalized).First(&tag).Error; err != nil {
		return nil, models.NewInternalError("get tag after upsert", err)
	}
	return &tag, nil
}

// Popular returns the most used tags, counted over live questions only.
func (r *tagRepository) Popular(ctx context.Context, limit int) ([]models.Tag, error) {
	var tags []models.Tag
	err := cache.Aside(ctx, cache.PopularTagsKey, &tags, cache.PopularTagsTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Tag{}).
			Select("tags.*, COUNT(question_tags.question_id) AS usage_count").
			Joins("JOIN question_tags ON question_tags.tag_id = tags.id").
			Joins("JOIN questions ON questions.id = question_tags.question_id AND questions.deleted_at IS NULL").
			Group("tags.id").
			Order("usage_count DESC, tags.name ASC").
			Limit(limit).
			Find(&tags).Error
	})
	if err != nil {
		return nil, models.NewInternalError("popular tags", err)
	}
	return tags, nil
}
