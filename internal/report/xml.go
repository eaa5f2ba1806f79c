package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// XML STRUCTURE:
//
//   <complianceReport run="...">               <!-- Root element -->
//     <invoice n="1">                          <!-- One element per invoice -->
//       <SourceFile>input/jan.json</SourceFile>
//       <InvoiceID>INV-2024-0001</InvoiceID>
//       <Vendor>Acme Supplies</Vendor>
//       <InvoiceDate>2024-01-15</InvoiceDate>
//       <TotalAmount>1500</TotalAmount>
//       <FinalStatus>FAIL</FinalStatus>
//       <Confidence>0.75</Confidence>
//       <failedChecks>
//         <check>Duplicate Invoice</check>
//       </failedChecks>
//     </invoice>
//   </complianceReport>
//
// Invoices are numbered globally across all files of the run.

const (
	xmlRootElement    = "complianceReport"
	xmlInvoiceElement = "invoice"
	xmlIndent         = "  "
)

// xmlElement represents a generic XML element.
type xmlElement struct {
	Name       string
	Attributes []xml.Attr
	Value      string
	Children   []xmlElement
}

// xmlSink collects invoice elements and writes the document on Close.
type xmlSink struct {
	path     string
	runID    string
	invoices []xmlElement
	closed   bool
}

// NewXMLSink returns a sink writing an XML document to path.
func NewXMLSink(path, runID string) Sink {
	return &xmlSink{path: path, runID: runID}
}

func (s *xmlSink) Write(inv types.Invoice, res types.Resolution) error {
	s.invoices = append(s.invoices, buildInvoiceElement(newRow(inv, res), len(s.invoices)+1))
	return nil
}

func (s *xmlSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := os.WriteFile(s.path, s.render(), 0o644); err != nil {
		return fmt.Errorf("failed to write XML report: %w", err)
	}
	return nil
}

// render produces the complete document with an XML declaration.
func (s *xmlSink) render() []byte {
	var buffer bytes.Buffer
	buffer.WriteString(xml.Header)

	root := xmlElement{Name: xmlRootElement, Children: s.invoices}
	if s.runID != "" {
		root.Attributes = []xml.Attr{{Name: xml.Name{Local: "run"}, Value: s.runID}}
	}

	writeElement(&buffer, root, xmlIndent, 0)
	return buffer.Bytes()
}

// buildInvoiceElement constructs an invoice element.
//
// STRUCTURE:
//   <invoice n="1">
//     <InvoiceID>INV-2024-0001</InvoiceID>
//     ...
//     <failedChecks/>
//   </invoice>
func buildInvoiceElement(r row, index int) xmlElement {
	element := xmlElement{
		Name: xmlInvoiceElement,
		Attributes: []xml.Attr{
			{Name: xml.Name{Local: "n"}, Value: strconv.Itoa(index)},
		},
	}

	element.Children = append(element.Children,
		simpleElement("SourceFile", r.SourceFile),
		simpleElement("Position", strconv.Itoa(r.Position)),
		simpleElement("InvoiceID", r.InvoiceID),
		simpleElement("Vendor", r.Vendor),
		simpleElement("InvoiceDate", r.Date),
		simpleElement("TotalAmount", r.Total),
		simpleElement("FinalStatus", r.FinalStatus),
		simpleElement("Confidence", strconv.FormatFloat(r.Confidence, 'f', -1, 64)),
	)

	failed := xmlElement{Name: "failedChecks"}
	for _, name := range r.FailedChecks {
		failed.Children = append(failed.Children, simpleElement("check", name))
	}
	element.Children = append(element.Children, failed)

	return element
}

// simpleElement creates a simple XML element with a text value.
func simpleElement(name, value string) xmlElement {
	return xmlElement{Name: name, Value: value}
}

func writeOpenTag(buffer *bytes.Buffer, element xmlElement) {
	buffer.WriteString("<")
	buffer.WriteString(element.Name)
	for _, attr := range element.Attributes {
		fmt.Fprintf(buffer, " %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value))
	}
}

// writeElement writes an XML element to the buffer with indentation.
// Elements without a value or children are self-closing.
func writeElement(buffer *bytes.Buffer, element xmlElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	writeOpenTag(buffer, element)

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML. Runes outside the XML 1.0
// Char production, such as control characters, are dropped.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		if !isXMLChar(r) {
			continue
		}
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// isXMLChar reports whether r may appear in an XML 1.0 document.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}
