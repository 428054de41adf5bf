package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksFindsFencedChunks(t *testing.T) {
	src := []byte("# Title\n\n```{r intro-001, echo=FALSE}\n1\n```\n\n" +
		"```r\nnot a chunk\n```\n\n" +
		"> ```{python intro-002}\n> print(1)\n> ```\n")
	got := Chunks(src)
	require.Len(t, got, 2)
	assert.Equal(t, Chunk{Engine: "r", Label: "intro-001", Line: 3}, got[0])
	assert.Equal(t, "python", got[1].Engine)
	assert.Equal(t, "intro-002", got[1].Label)
	assert.Equal(t, 11, got[1].Line)
}

func TestLabelsOK(t *testing.T) {
	src := []byte("```{r a-001}\nx\n```\n\n```{r a-002, eval=FALSE}\ny\n```\n")
	assert.NoError(t, Labels("a.Rmd", src))
}

func TestLabelsReportsAllIssues(t *testing.T) {
	src := []byte("```{r}\nx\n```\n\n" +
		"```{r dup}\ny\n```\n\n" +
		"```{r dup}\nz\n```\n\n" +
		"```{r 'has space'}\nw\n```\n")
	err := Labels("bad.Rmd", src)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "bad.Rmd:1: chunk has no label")
	assert.Contains(t, msg, `bad.Rmd:9: duplicate label "dup" (first used at line 5)`)
	assert.Contains(t, msg, `bad.Rmd:13: label "has space" is not identifier-safe`)
}

func TestLabelsIgnoresPlainFences(t *testing.T) {
	src := []byte("```\nplain\n```\n\n~~~sh\necho\n~~~\n")
	assert.NoError(t, Labels("plain.Rmd", src))
	assert.Empty(t, Chunks(src))
}

func TestLabelsRejectsSecondLabel(t *testing.T) {
	src := []byte("```{r a-001}\nx\n```\n\n```{r a-002, label=\"old\"}\ny\n```\n")
	err := Labels("two.Rmd", src)
	require.Error(t, err)
	assert.Equal(t, "two.Rmd:5: chunk has more than one label", err.Error())
}
