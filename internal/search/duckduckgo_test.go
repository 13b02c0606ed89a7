package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgResultsPage = `<html><body>
<div class="serp__results">
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.test%2Freport&amp;rut=abc">City budget report</a>
    <a class="result__snippet" href="https://example.test/report">The budget grew by <b>three percent</b> last year.</a>
  </div>
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="https://other.test/story">Second story</a>
    <a class="result__snippet" href="https://other.test/story">Another snippet.</a>
  </div>
  <div class="result results_links">
    <a class="result__a" href="https://third.test/page">Third page</a>
  </div>
</div>
</body></html>`

func TestParseDuckDuckGoResults(t *testing.T) {
	results, err := parseDuckDuckGoResults(ddgResultsPage, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "https://example.test/report", results[0].URL, "redirect links are unwrapped")
	assert.Equal(t, "City budget report", results[0].Title)
	assert.Contains(t, results[0].Snippet, "three percent")

	assert.Equal(t, "https://other.test/story", results[1].URL)
	assert.Equal(t, "https://third.test/page", results[2].URL)
	assert.Empty(t, results[2].Snippet)
}

func TestParseDuckDuckGoResults_MaxResults(t *testing.T) {
	results, err := parseDuckDuckGoResults(ddgResultsPage, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestParseDuckDuckGoResults_EmptyPage(t *testing.T) {
	results, err := parseDuckDuckGoResults("<html><body><p>no results</p></body></html>", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.example.test/page", "example.test"},
		{"https://sub.example.test/page", "sub.example.test"},
		{"http://example.test", "example.test"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainOf(tt.url))
		})
	}
}
