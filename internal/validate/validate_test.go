package validate

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	rules := Rules{
		"title": {Required(), MaxLength(200)},
		"body":  {Required()},
	}

	t.Run("accepts valid input", func(t *testing.T) {
		errs := rules.Validate(url.Values{
			"title": {"Hello"},
			"body":  {"World"},
		})
		assert.True(t, errs.Valid())
		assert.Empty(t, errs)
	})

	t.Run("missing field is required", func(t *testing.T) {
		errs := rules.Validate(url.Values{"title": {"Hello"}})
		assert.False(t, errs.Valid())
		assert.Equal(t, "body is required", errs.First("body"))
		assert.Empty(t, errs["title"])
	})

	t.Run("whitespace-only counts as empty", func(t *testing.T) {
		errs := rules.Validate(url.Values{
			"title": {"   "},
			"body":  {"World"},
		})
		assert.False(t, errs.Valid())
		assert.Equal(t, "title is required", errs.First("title"))
	})

	t.Run("too long title is rejected", func(t *testing.T) {
		errs := rules.Validate(url.Values{
			"title": {strings.Repeat("a", 201)},
			"body":  {"World"},
		})
		assert.False(t, errs.Valid())
		assert.Equal(t, "title must be at most 200 characters", errs.First("title"))
	})

	t.Run("length counts runes not bytes", func(t *testing.T) {
		errs := Rules{"title": {MaxLength(3)}}.Validate(url.Values{
			"title": {"héllo"},
		})
		assert.Equal(t, "title must be at most 3 characters", errs.First("title"))

		errs = Rules{"title": {MaxLength(3)}}.Validate(url.Values{
			"title": {"héî"},
		})
		assert.True(t, errs.Valid())
	})

	t.Run("multiple failures collect per field", func(t *testing.T) {
		errs := rules.Validate(url.Values{})
		assert.Len(t, errs, 2)
		assert.Equal(t, "title is required", errs.First("title"))
		assert.Equal(t, "body is required", errs.First("body"))
	})

	t.Run("First on clean field is empty", func(t *testing.T) {
		errs := rules.Validate(url.Values{"title": {"ok"}, "body": {"ok"}})
		assert.Equal(t, "", errs.First("title"))
	})
}
