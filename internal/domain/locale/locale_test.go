// internal/domain/locale/locale_test.go
package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Run("root path is the default country", func(t *testing.T) {
		loc := Resolve("/")
		assert.True(t, loc.IsDefault)
		assert.Equal(t, "us", loc.CountryCode)
		assert.Equal(t, "", loc.CommerceBaseURI)
	})

	t.Run("country prefix selects the country", func(t *testing.T) {
		loc := Resolve("/uk/products/pendant-light")
		assert.False(t, loc.IsDefault)
		assert.Equal(t, "uk", loc.CountryCode)
		assert.Equal(t, "/uk", loc.BaseURI)
		assert.Equal(t, "/uk", loc.CommerceBaseURI)
		assert.Equal(t, "en-GB", loc.Tag)
	})

	t.Run("unknown prefix falls back to the default", func(t *testing.T) {
		loc := Resolve("/products/pendant-light")
		assert.True(t, loc.IsDefault)
		assert.Equal(t, "us", loc.CountryCode)
	})

	t.Run("empty path", func(t *testing.T) {
		loc := Resolve("")
		assert.Equal(t, "us", loc.CountryCode)
	})
}

func TestEnabled(t *testing.T) {
	all := Enabled(nil)
	assert.Len(t, all, len(Countries))

	some := Enabled(map[string]bool{"eu": true})
	assert.Len(t, some, len(Countries)-1)
	for _, c := range some {
		assert.NotEqual(t, "eu", c.Param)
	}
}
