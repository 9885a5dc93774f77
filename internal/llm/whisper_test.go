package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedLanguages(t *testing.T) {
	languages := SupportedLanguages()
	assert.Len(t, languages, 22)
	assert.Equal(t, "hi", languages["hindi"])
	assert.Equal(t, "en", languages["english"])
	assert.Equal(t, "sat", languages["santali"])

	// Mutating the copy must not touch the shared map.
	languages["hindi"] = "zz"
	assert.Equal(t, "hi", SupportedLanguages()["hindi"])
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Hindi", LanguageName("hi"))
	assert.Equal(t, "Tamil", LanguageName("ta"))
	assert.Equal(t, "Konkani", LanguageName("gom"))
	assert.Equal(t, "XX", LanguageName("xx"))
}
