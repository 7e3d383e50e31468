package emit

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// placeholderGray is the fill color rendered on [...] placeholder runs.
const placeholderGray = "999999"

// Document is a logical export: a title and an ordered set of pages.
type Document struct {
	Title string
	Pages []PageContent
}

// PageContent is one page's rendered text together with its structural
// analysis, used to drive per-paragraph role styling.
type PageContent struct {
	MainText   string
	MarginText string
	Structure  wordbox.PageStructure
	Boxes      []wordbox.Box
}

// Builder serializes a Document into a ZIP-packaged, right-to-left
// Office Open XML package, mirroring the teacher's ePub ZIP builder.
type Builder struct {
	doc Document
}

// NewBuilder wraps doc for serialization.
func NewBuilder(doc Document) *Builder {
	return &Builder{doc: doc}
}

// Build writes the package to w. No partial archive is left on error:
// callers that need "no partial files" guarantee this by writing to a
// buffer first (see BuildToBuffer) and only persisting on success.
func (b *Builder) Build(w io.Writer) error {
	if err := ValidateContract(b.doc); err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	if err := b.writeContentTypes(zw); err != nil {
		zw.Close()
		return fmt.Errorf("write [Content_Types].xml: %w", err)
	}
	if err := b.writeRootRels(zw); err != nil {
		zw.Close()
		return fmt.Errorf("write _rels/.rels: %w", err)
	}
	if err := b.writeDocumentRels(zw); err != nil {
		zw.Close()
		return fmt.Errorf("write word/_rels/document.xml.rels: %w", err)
	}
	if err := b.writeStyles(zw); err != nil {
		zw.Close()
		return fmt.Errorf("write word/styles.xml: %w", err)
	}
	if err := b.writeDocument(zw); err != nil {
		zw.Close()
		return fmt.Errorf("write word/document.xml: %w", err)
	}

	return zw.Close()
}

// BuildToBuffer serializes the document into memory so callers can
// validate and then persist atomically, leaving no partial file on a
// mid-write failure.
func (b *Builder) BuildToBuffer() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := b.Build(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *Builder) writeContentTypes(zw *zip.Writer) error {
	w, err := zw.Create("[Content_Types].xml")
	if err != nil {
		return err
	}
	content := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`
	_, err = w.Write([]byte(content))
	return err
}

func (b *Builder) writeRootRels(zw *zip.Writer) error {
	w, err := zw.Create("_rels/.rels")
	if err != nil {
		return err
	}
	content := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
	_, err = w.Write([]byte(content))
	return err
}

func (b *Builder) writeDocumentRels(zw *zip.Writer) error {
	w, err := zw.Create("word/_rels/document.xml.rels")
	if err != nil {
		return err
	}
	content := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`
	_, err = w.Write([]byte(content))
	return err
}

// writeStyles emits the five required styles, each with bidi (RTL)
// enabled.
func (b *Builder) writeStyles(zw *zip.Writer) error {
	w, err := zw.Create("word/styles.xml")
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(stylesXML))
	return err
}

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Normal">
    <w:name w:val="Normal"/>
    <w:pPr><w:bidi/><w:jc w:val="both"/></w:pPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Title">
    <w:name w:val="Title"/>
    <w:pPr><w:bidi/><w:jc w:val="center"/><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="4"/></w:pBdr></w:pPr>
    <w:rPr><w:b/><w:sz w:val="36"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:pPr><w:bidi/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="28"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Header">
    <w:name w:val="header"/>
    <w:pPr><w:bidi/><w:pBdr><w:bottom w:val="single" w:sz="4" w:space="2"/></w:pBdr></w:pPr>
    <w:rPr><w:sz w:val="16"/><w:color w:val="666666"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Footer">
    <w:name w:val="footer"/>
    <w:pPr><w:bidi/><w:pBdr><w:top w:val="single" w:sz="4" w:space="2"/></w:pBdr></w:pPr>
    <w:rPr><w:sz w:val="16"/><w:color w:val="666666"/></w:rPr>
  </w:style>
</w:styles>`

func (b *Builder) writeDocument(zw *zip.Writer) error {
	w, err := zw.Create("word/document.xml")
	if err != nil {
		return err
	}

	var body strings.Builder
	body.WriteString(`<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>`)
	body.WriteString(escapeXML(b.doc.Title))
	body.WriteString(`</w:t></w:r></w:p>`)

	for _, pg := range b.doc.Pages {
		writePageBody(&body, pg)
	}

	content := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>` + body.String() + `</w:body>
</w:document>`
	_, err = w.Write([]byte(content))
	return err
}

func writePageBody(body *strings.Builder, pg PageContent) {
	for _, p := range pg.Structure.Paragraphs {
		writeParagraph(body, p, pg.Boxes)
	}
	if pg.MarginText != "" {
		body.WriteString(`<w:p><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t>`)
		body.WriteString(escapeXML(pg.MarginText))
		body.WriteString(`</w:t></w:r></w:p>`)
	}
}

func writeParagraph(body *strings.Builder, p wordbox.Paragraph, boxes []wordbox.Box) {
	style, runs := paragraphStyleAndRuns(p, boxes)
	body.WriteString(`<w:p><w:pPr><w:pStyle w:val="`)
	body.WriteString(style)
	body.WriteString(`"/><w:bidi/></w:pPr>`)
	for _, r := range runs {
		writeRun(body, r)
	}
	body.WriteString(`</w:p>`)
}

type run struct {
	text      string
	bold      bool
	italic    bool
	grayColor bool
}

func paragraphStyleAndRuns(p wordbox.Paragraph, boxes []wordbox.Box) (string, []run) {
	byLine := wordbox.GroupByLine(boxes)

	style := "Normal"
	switch p.Role {
	case wordbox.RoleHeader:
		style = "Header"
	case wordbox.RoleFooter:
		style = "Footer"
	case wordbox.RoleSectionHeader:
		style = "Heading1"
	}

	var runs []run
	for li, lineID := range p.LineIDs {
		line := append([]wordbox.Box(nil), byLine[lineID]...)
		wordbox.SortByWordNum(line)
		for wi, b := range line {
			if li == 0 && wi == 0 && p.Role == wordbox.RoleSectionHeader && p.SectionNumber != "" && b.Text == p.SectionNumber {
				runs = append(runs, run{text: b.Text, bold: true})
				continue
			}
			r := run{text: b.Text, bold: p.Role == wordbox.RoleSectionHeader}
			if b.IsPlaceholder {
				r.italic = true
				r.grayColor = true
			}
			runs = append(runs, r)
		}
		if li < len(p.LineIDs)-1 {
			runs = append(runs, run{text: " "})
		}
	}
	return style, runs
}

func writeRun(body *strings.Builder, r run) {
	body.WriteString("<w:r>")
	if r.bold || r.italic || r.grayColor {
		body.WriteString("<w:rPr>")
		if r.bold {
			body.WriteString("<w:b/>")
		}
		if r.italic {
			body.WriteString("<w:i/>")
		}
		if r.grayColor {
			body.WriteString(`<w:color w:val="` + placeholderGray + `"/>`)
		}
		body.WriteString("</w:rPr>")
	}
	body.WriteString(`<w:t xml:space="preserve">`)
	body.WriteString(escapeXML(r.text))
	body.WriteString(" </w:t></w:r>")
}

// escapeXML escapes the characters required in element text content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
