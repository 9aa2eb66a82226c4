package services

import (
	"errors"
	"fmt"
	"strings"

	"quill/models"

	"gorm.io/gorm"
)

// maxTagLength matches the width of tags.name.
const maxTagLength = 100

// NormalizeTags splits comma separated input into trimmed, non-empty names,
// keeping the first occurrence of each in input order.
func NormalizeTags(input string) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, part := range strings.Split(input, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// TagsInput renders tags the way the post form expects them back.
func TagsInput(post *models.Post) string {
	return strings.Join(post.TagNames(), ", ")
}

// SetPostTags replaces the post's tag set with names, creating missing tags.
func SetPostTags(tx *gorm.DB, post *models.Post, names []string) error {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := getOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	assoc := tx.Model(post).Association("Tags")
	if len(tags) == 0 {
		if err := assoc.Clear(); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		post.Tags = nil
		return nil
	}
	if err := assoc.Replace(tags); err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}
	post.Tags = tags
	return nil
}

func getOrCreateTag(tx *gorm.DB, name string) (models.Tag, error) {
	var tag models.Tag
	err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = tx.Where("name = ?", name).First(&tag).Error
	}
	if err != nil {
		return tag, fmt.Errorf("failed to get or create tag %q: %w", name, err)
	}
	return tag, nil
}
