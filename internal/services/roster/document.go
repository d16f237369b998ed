package roster

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/tourneybot/internal/model"
)

const (
	documentPart = "word/document.xml"
	wordMLNS     = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// recordSeparator closes each registration block in the document
var recordSeparator = "\n" + strings.Repeat("-", 30) + "\n"

var errNoDocumentBody = errors.New("document has no body")

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const emptyDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + wordMLNS + `"><w:body><w:sectPr/></w:body></w:document>`

// newDocument renders an empty .docx package
func newDocument() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{documentPart, emptyDocumentXML},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// recordParagraphs returns the block written for one registration
func recordParagraphs(rec model.Registration) []string {
	return []string{
		"Country: " + rec.Country,
		"Username: " + rec.Username,
		"UID: " + rec.UID,
		"Level: " + rec.Level,
		recordSeparator,
	}
}

// appendDocumentRecord adds the registration block to the end of the
// document body. Every other part of the package is copied unchanged.
func appendDocumentRecord(data []byte, rec model.Registration) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	found := false

	for _, f := range zr.File {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return nil, err
			}
			continue
		}

		found = true
		body, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		body, err = insertParagraphs(body, recordParagraphs(rec))
		if err != nil {
			return nil, err
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
	}

	if !found {
		return nil, fmt.Errorf("missing %s", documentPart)
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// insertParagraphs places paragraphs before the section properties, or before
// the end of the body when the document has none
func insertParagraphs(doc []byte, paragraphs []string) ([]byte, error) {
	at := bytes.LastIndex(doc, []byte("<w:sectPr"))
	if at < 0 {
		at = bytes.LastIndex(doc, []byte("</w:body>"))
	}
	if at < 0 {
		return nil, errNoDocumentBody
	}

	var xmlBuf bytes.Buffer
	for _, p := range paragraphs {
		if err := writeParagraph(&xmlBuf, p); err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, len(doc)+xmlBuf.Len())
	out = append(out, doc[:at]...)
	out = append(out, xmlBuf.Bytes()...)
	out = append(out, doc[at:]...)
	return out, nil
}

// writeParagraph renders text as one run; newlines become line breaks
func writeParagraph(w *bytes.Buffer, text string) error {
	w.WriteString("<w:p><w:r>")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			w.WriteString("<w:br/>")
		}
		if line == "" {
			continue
		}
		w.WriteString(`<w:t xml:space="preserve">`)
		if err := xml.EscapeText(w, []byte(line)); err != nil {
			return err
		}
		w.WriteString("</w:t>")
	}
	w.WriteString("</w:r></w:p>")
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
