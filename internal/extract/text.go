package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

// TextExtractor converts uploaded resume documents into plain text.
// Everything operates on in-memory bytes; no temp files are written.
type TextExtractor struct{}

// NewTextExtractor creates a text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the plain text of a resume document. The document kind is
// determined by filename extension. Unsupported extensions yield a
// BusinessError with kind UnsupportedFormat.
func (e *TextExtractor) Extract(doc types.ResumeDocument) (string, error) {
	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return e.extractPDF(doc.Bytes)
	case ".docx", ".doc":
		return e.extractDOCX(doc.Bytes)
	default:
		return "", &types.BusinessError{
			Kind:    types.UnsupportedFormat,
			Message: fmt.Sprintf("unsupported resume format: %s", doc.Filename),
		}
	}
}

// extractPDF joins the plain text of every page with newlines. Pages that
// fail to decode contribute an empty string rather than failing the whole
// document, matching how scanned or partially corrupt resumes degrade.
func (e *TextExtractor) extractPDF(b []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to open PDF document", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// extractDOCX reads word/document.xml from the OOXML archive and flattens
// its text runs, emitting a newline per paragraph.
func (e *TextExtractor) extractDOCX(b []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to open DOCX archive", err)
	}

	var docXML io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to read DOCX document part", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "DOCX archive has no document part", nil)
	}
	defer docXML.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(docXML)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to parse DOCX document part", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var text string
				if err := decoder.DecodeElement(&text, &t); err != nil {
					return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to decode DOCX text run", err)
				}
				sb.WriteString(text)
			} else if t.Name.Local == "tab" {
				sb.WriteString("\t")
			} else if t.Name.Local == "br" {
				sb.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}
