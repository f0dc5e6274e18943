package report

import "strings"

// Kind is the type of a report line
type Kind int

const (
	Heading Kind = iota
	SubHeading
	Bold
	Paragraph
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case SubHeading:
		return "subheading"
	case Bold:
		return "bold"
	case Paragraph:
		return "paragraph"
	}
	return "unknown"
}

// Outcome is which resolution path produced a document
type Outcome string

const (
	OutcomeCompany  Outcome = "company"
	OutcomeOverview Outcome = "overview"
	OutcomeNoMatch  Outcome = "no_match"
)

// Line is one typed line. Label is only used by Bold lines.
type Line struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

// Document is a rendered-agnostic report
type Document struct {
	Outcome Outcome `json:"outcome"`
	Company string  `json:"company,omitempty"`
	Lines   []Line  `json:"lines"`
}

// Builder appends lines in order
type Builder struct {
	doc Document
}

// NewBuilder starts a document for the given outcome
func NewBuilder(outcome Outcome) *Builder {
	return &Builder{doc: Document{Outcome: outcome}}
}

func (b *Builder) Heading(text string) *Builder {
	b.doc.Lines = append(b.doc.Lines, Line{Kind: Heading, Text: text})
	return b
}

func (b *Builder) SubHeading(text string) *Builder {
	b.doc.Lines = append(b.doc.Lines, Line{Kind: SubHeading, Text: text})
	return b
}

func (b *Builder) Bold(label, value string) *Builder {
	b.doc.Lines = append(b.doc.Lines, Line{Kind: Bold, Label: label, Text: value})
	return b
}

func (b *Builder) Paragraph(text string) *Builder {
	b.doc.Lines = append(b.doc.Lines, Line{Kind: Paragraph, Text: text})
	return b
}

// Company records which company the document is about
func (b *Builder) Company(name string) *Builder {
	b.doc.Company = name
	return b
}

// Build returns the finished document
func (b *Builder) Build() Document {
	return b.doc
}

// Markdown renders the document with "##", "###" and "**bold**" markup
func (d Document) Markdown() string {
	var sb strings.Builder
	for i, l := range d.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch l.Kind {
		case Heading:
			sb.WriteString("## " + l.Text)
		case SubHeading:
			sb.WriteString("### " + l.Text)
		case Bold:
			sb.WriteString("**" + l.Label + ":** " + l.Text)
		default:
			sb.WriteString(l.Text)
		}
	}
	return sb.String()
}

// Text renders the document as plain text
func (d Document) Text() string {
	var sb strings.Builder
	for i, l := range d.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch l.Kind {
		case Heading:
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat("=", len(l.Text)))
		case SubHeading:
			sb.WriteByte('\n')
			sb.WriteString(l.Text)
		case Bold:
			sb.WriteString(l.Label + ": " + l.Text)
		default:
			sb.WriteString(l.Text)
		}
	}
	return sb.String()
}

// Find returns the first Bold line with the given label
func (d Document) Find(label string) (Line, bool) {
	for _, l := range d.Lines {
		if l.Kind == Bold && l.Label == label {
			return l, true
		}
	}
	return Line{}, false
}

// Section returns the lines between the named subheading and the next one
func (d Document) Section(title string) []Line {
	var out []Line
	in := false
	for _, l := range d.Lines {
		if l.Kind == SubHeading || l.Kind == Heading {
			if in {
				break
			}
			in = l.Kind == SubHeading && l.Text == title
			continue
		}
		if in {
			out = append(out, l)
		}
	}
	return out
}
