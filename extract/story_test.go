package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkup = `<div class="story-content">
	<h1> Sample Title </h1>
	<div class="story-source">2025-11-06 聯合報</div>
	<img src="/ShowPhoto/42?size=l">
	<img src="/ShowPhoto/42?size=l">
	<img src="data:image/gif;base64,R0lGOD">
	<p>Sample Body</p>
</div>`

func TestParseStory(t *testing.T) {
	story, err := ParseStory(sampleMarkup, DefaultSelectors)
	require.NoError(t, err)

	assert.Equal(t, "Sample Title", story.Title)
	assert.Equal(t, "2025-11-06 聯合報", story.Date)
}

func TestParseStory_MissingFields(t *testing.T) {
	story, err := ParseStory(`<div class="story-content"><p>no heading</p></div>`, DefaultSelectors)
	require.NoError(t, err)

	assert.Empty(t, story.Title)
	assert.Empty(t, story.Date)
}

func TestImageSources(t *testing.T) {
	got := ImageSources(sampleMarkup, "https://news.example/Story?no=1")
	assert.Equal(t, []string{"https://news.example/ShowPhoto/42?size=l"}, got)
}

func TestValidateSelectors(t *testing.T) {
	assert.NoError(t, ValidateSelectors(".story-content", "h1", ".story-source"))
	assert.Error(t, ValidateSelectors("div[["))
	assert.Error(t, ValidateSelectors(" "))
}

func TestApplyCSSSelector(t *testing.T) {
	page := `<html><body><nav>menu</nav>` + sampleMarkup + `</body></html>`

	got, ok, err := ApplyCSSSelector(page, ".story-content")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, got, "Sample Body")
	assert.NotContains(t, got, "menu")

	_, ok, err = ApplyCSSSelector(page, ".missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToMarkdown(t *testing.T) {
	md, err := ToMarkdown(NewMarkdownConverter(), `<div><h1>Sample Title</h1><p>Sample <b>Body</b></p></div>`, "https://news.example")
	require.NoError(t, err)

	assert.Contains(t, md, "# Sample Title")
	assert.Contains(t, md, "Sample **Body**")
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("ab"))
	assert.Equal(t, 3, EstimateTokens("abcdefghi"))
}
