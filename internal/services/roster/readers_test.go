package roster

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// spreadsheetRows reads every row of the active sheet, header included
func spreadsheetRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
}

// documentParagraphs extracts paragraph text, with line breaks as "\n"
func documentParagraphs(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		body, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		return parseParagraphs(body)
	}
	return nil, fmt.Errorf("missing %s", documentPart)
}

func parseParagraphs(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	paragraphs := []string{}
	var current strings.Builder
	inParagraph, inText := false, false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return paragraphs, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordMLNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = true
			case "br":
				if inParagraph {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordMLNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, current.String())
				inParagraph = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inParagraph && inText {
				current.Write(t)
			}
		}
	}
}
