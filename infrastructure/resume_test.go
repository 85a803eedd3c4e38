package infrastructure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/domain"
)

func TestExtractPlainText(t *testing.T) {
	e, err := NewResumeExtractor(1024, "")
	require.NoError(t, err)

	text, err := e.Extract(strings.NewReader("  Go, Docker, PostgreSQL \n"), "cv.TXT")
	require.NoError(t, err)
	assert.Equal(t, "Go, Docker, PostgreSQL", text)
}

func TestExtractRejectsUnsupportedOversizedAndEmpty(t *testing.T) {
	e, err := NewResumeExtractor(8, "")
	require.NoError(t, err)

	_, err = e.Extract(strings.NewReader("x"), "cv.exe")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = e.Extract(strings.NewReader("0123456789"), "cv.txt")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = e.Extract(strings.NewReader("   "), "cv.txt")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	e, err := NewResumeExtractor(1024, "")
	require.NoError(t, err)

	_, err = e.Extract(strings.NewReader("not a pdf"), "cv.pdf")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestStripDocumentXML(t *testing.T) {
	xml := `<w:document><w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go &amp; Kubernetes</w:t></w:r></w:p></w:body></w:document>`
	assert.Equal(t, "Jane Doe\nGo & Kubernetes", stripDocumentXML(xml))
}
