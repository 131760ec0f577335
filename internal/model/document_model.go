package model

import (
	"mime"
	"strings"
)

const MediaTypePDF = "application/pdf"

// Document is a user-selected résumé. It is never mutated after acceptance.
type Document struct {
	Name      string
	MediaType string
	Content   []byte
}

// IsPDF reports whether the declared media type is application/pdf. Parameters
// such as "; charset=binary" are ignored.
func (d Document) IsPDF() bool {
	mediaType, _, err := mime.ParseMediaType(d.MediaType)
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, MediaTypePDF)
}

// SkillSet is the ordered list of labels produced by extraction.
type SkillSet []string

func (s SkillSet) Clone() SkillSet {
	if s == nil {
		return nil
	}
	out := make(SkillSet, len(s))
	copy(out, s)
	return out
}
