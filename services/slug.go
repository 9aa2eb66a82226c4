package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"quill/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	maxSlugLength   = 255
	maxSlugAttempts = 5
	fallbackSlug    = "post"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	slugSeparators = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lowercases title, strips accents and punctuation, and joins the
// remaining words with single hyphens. "Don't Panic" becomes "dont-panic".
func Slugify(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	ascii, _, err := transform.String(t, title)
	if err != nil {
		ascii = title
	}

	slug := slugDisallowed.ReplaceAllString(strings.ToLower(ascii), "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// UniqueSlug returns the first of base, base-1, base-2, ... not used by any
// post other than excludeID. The unique index on posts.slug remains the real
// guard; callers retry on gorm.ErrDuplicatedKey.
func UniqueSlug(tx *gorm.DB, title string, excludeID uint) (string, error) {
	base := Slugify(title)

	q := tx.Model(&models.Post{}).Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var taken []string
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", fmt.Errorf("failed to check slug %q: %w", base, err)
	}

	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base, nil
	}

	for n := 1; ; n++ {
		candidate := withSuffix(base, n)
		if _, ok := used[candidate]; !ok {
			return candidate, nil
		}
	}
}

func withSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength-len(suffix)], "-")
	}
	return base + suffix
}
