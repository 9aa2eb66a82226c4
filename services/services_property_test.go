package services

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"quill/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("slugs are url safe", prop.ForAll(
		func(title string) bool {
			slug := Slugify(title)
			return slugShape.MatchString(slug) && len(slug) <= maxSlugLength
		},
		gen.AnyString(),
	))

	properties.Property("slugify is idempotent", prop.ForAll(
		func(title string) bool {
			once := Slugify(title)
			return Slugify(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestDuplicateTitlesGetDistinctSlugs(t *testing.T) {
	db, posts := setup(t)
	alice := newUser(t, db, "alice")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("same title twice yields two slugs", prop.ForAll(
		func(title string) bool {
			if strings.TrimSpace(title) == "" {
				return true
			}
			req := &models.CreatePostRequest{Title: title, Content: "x"}
			a, err := posts.Create(context.Background(), alice, req)
			if err != nil {
				return false
			}
			b, err := posts.Create(context.Background(), alice, req)
			if err != nil {
				return false
			}
			return a.Slug != b.Slug
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestTagNormalizationIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("normalize(join(normalize(x))) == normalize(x)", prop.ForAll(
		func(parts []string) bool {
			once := NormalizeTags(strings.Join(parts, ","))
			twice := NormalizeTags(strings.Join(once, ","))
			return strings.Join(once, "\x00") == strings.Join(twice, "\x00")
		},
		gen.SliceOf(gen.OneGenOf(gen.AlphaString(), gen.Const(" "), gen.Const("go "), gen.Const(" go"))),
	))

	properties.TestingRun(t)
}

func TestToggleLikeIsAnInvolution(t *testing.T) {
	db, posts := setup(t)
	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	post := newPost(t, posts, alice, "Target", models.StatusPublished, "")
	likes := NewLikeService(db, nil, nil)
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("toggling twice restores state and count", prop.ForAll(
		func(bobLikes bool, useBob bool) bool {
			// Arrange the starting state for bob, then toggle someone twice.
			if hasLike(t, db, post.ID, bob.ID) != bobLikes {
				if _, err := likes.Toggle(ctx, post, bob); err != nil {
					return false
				}
			}

			actor := alice
			if useBob {
				actor = bob
			}
			before := hasLike(t, db, post.ID, actor.ID)
			countBefore, err := likes.Count(ctx, post.ID)
			require.NoError(t, err)

			first, err := likes.Toggle(ctx, post, actor)
			if err != nil || first.Liked == before {
				return false
			}
			second, err := likes.Toggle(ctx, post, actor)
			if err != nil {
				return false
			}
			return second.Liked == before && second.LikeCount == countBefore
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func hasLike(t *testing.T, db *gorm.DB, postID, userID uint) bool {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error)
	return count > 0
}
