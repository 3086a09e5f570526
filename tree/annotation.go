package tree

// Annotation is an optional free text attached to a node. It is not part of
// the document and never written to a dataset.
type Annotation struct {
	text string
}

// NewAnnotation returns an annotation holding text.
func NewAnnotation(text string) Annotation {
	return Annotation{text: text}
}

// IsEmpty reports whether no text is set.
func (a Annotation) IsEmpty() bool {
	return a.text == ""
}

// Text returns the annotation text.
func (a Annotation) Text() string {
	return a.text
}

// Set replaces the annotation text.
func (a *Annotation) Set(text string) {
	a.text = text
}

// Clear removes the annotation text.
func (a *Annotation) Clear() {
	a.text = ""
}

// Equal reports whether both annotations hold the same text.
func (a Annotation) Equal(other Annotation) bool {
	return a.text == other.text
}

func (a Annotation) String() string {
	return a.text
}
