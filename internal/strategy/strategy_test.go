package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTransform(t *testing.T) {
	d := Default{}

	assert.Equal(t, "login logout", d.Transform("  login logout  "))
	assert.Equal(t, `"a phrase" term`, d.Transform(`"a phrase" term`))
	// unbalanced quote becomes a literal
	assert.Equal(t, `abc"" def`, d.Transform(`abc" def`))
}

func TestCodeAwareSinglePhrase(t *testing.T) {
	c := CodeAware{}
	assert.Equal(t, `"exact phrase"`, c.Transform(`"exact phrase"`))
}

func TestCodeAwareQuotesCodePatterns(t *testing.T) {
	c := CodeAware{}

	got := c.Transform("$user->getName()")
	assert.Contains(t, got, `"$user->getName()"`)

	got = c.Transform("find the user_repository class")
	assert.Contains(t, got, `"user_repository"`)
	assert.Contains(t, got, "find")

	got = c.Transform("std::vector usage")
	assert.Contains(t, got, `"std::vector"`)
}

func TestCodeAwarePreservesSyntax(t *testing.T) {
	c := CodeAware{}

	got := c.Transform("login AND user_name")
	assert.Equal(t, `login AND "user_name"`, got)

	got = c.Transform(`NEAR(a b) OR term*`)
	assert.Equal(t, `NEAR(a b) OR term*`, got)

	got = c.Transform("^main and rest")
	assert.Contains(t, got, "^main")
	assert.Contains(t, got, "AND")
}

func TestIsCodePattern(t *testing.T) {
	patterns := []string{"user_name", "$var", "obj->method", "ns::type", "a.b", "call()", "#tag", "user@host"}
	for _, p := range patterns {
		assert.True(t, IsCodePattern(p), p)
	}
	plain := []string{"login", "Session", "3.14", "words"}
	for _, p := range plain {
		assert.False(t, IsCodePattern(p), p)
	}
}

func TestFallbackVariants(t *testing.T) {
	f := Fallback{}

	assert.Equal(t, `"user login"`, f.Transform("user login"))

	variants := f.Variants("user login flow")
	assert.Equal(t, `"user login flow"`, variants[0])
	assert.Equal(t, "user* login* flow*", variants[1])
	assert.Equal(t, "user OR login OR flow", variants[2])
	assert.Equal(t, "user OR login OR flow", variants[3])
}

func TestKeywordsFiltersStopWords(t *testing.T) {
	got := Keywords("how do i find the user_repository")
	assert.Equal(t, `find OR "user_repository"`, got)

	// every term a stop word yields nothing
	assert.Equal(t, "", Keywords("how do i"))
}

func TestPrefixMatchSkipsExistingWildcard(t *testing.T) {
	assert.Equal(t, "auth* session*", PrefixMatch("auth* session"))
}

func TestBuilderVariantsDeduplicated(t *testing.T) {
	b := NewBuilder(Default{})

	variants := b.QueryVariants("user login")
	// default passthrough, phrase, prefix, or-join; keyword extraction
	// duplicates the or-join and is skipped
	assert.Equal(t, []string{
		"user login",
		`"user login"`,
		"user* login*",
		"user OR login",
	}, variants)
}

func TestBuilderFallbackQuery(t *testing.T) {
	b := NewBuilder(CodeAware{})
	assert.Equal(t, `"user login"`, b.BuildFallbackQuery("user login"))
}

func TestNormalizeQuerySortsTerms(t *testing.T) {
	b := NewBuilder(Default{})

	assert.Equal(t, "alpha beta gamma", b.NormalizeQuery("Gamma  ALPHA beta"))
	assert.Equal(t, b.NormalizeQuery("beta alpha"), b.NormalizeQuery("alpha beta"))
}

func TestNormalizeQueryKeepsOperatorOrder(t *testing.T) {
	b := NewBuilder(Default{})

	assert.Equal(t, "b and a", b.NormalizeQuery("b AND a"))
	assert.Equal(t, "near(x y) z", b.NormalizeQuery("NEAR(x y) z"))
	assert.Equal(t, "", b.NormalizeQuery("   "))
}
