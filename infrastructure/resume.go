package infrastructure

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"devconnect/domain"
)

// ResumeExtractor turns uploaded resume files into plain text for screening.
type ResumeExtractor struct {
	maxBytes int64
}

func NewResumeExtractor(maxBytes int64, unidocLicenseKey string) (*ResumeExtractor, error) {
	if unidocLicenseKey != "" {
		if err := license.SetMeteredKey(unidocLicenseKey); err != nil {
			return nil, fmt.Errorf("set unidoc license: %w", err)
		}
	}
	return &ResumeExtractor{maxBytes: maxBytes}, nil
}

func (e *ResumeExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return "", domain.Invalid(fmt.Sprintf("resume file exceeds %d bytes", e.maxBytes))
	}

	var text string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		text = string(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return "", domain.Invalid("resume must be a .txt, .md, .pdf or .docx file")
	}
	if err != nil {
		C("resume").WithError(err).WithField("filename", filename).Warn("resume extraction failed")
		return "", domain.Invalid("could not read resume file")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.Invalid("resume file contains no text")
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer r.Close()
	return stripDocumentXML(r.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

func stripDocumentXML(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	return strings.TrimSpace(blankLines.ReplaceAllString(content, "\n\n"))
}
