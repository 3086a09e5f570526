package sr

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
)

// CodedEntry is a code triplet with optional scheme version, as found in
// concept name and concept code sequences.
type CodedEntry struct {
	CodeValue              string
	CodingSchemeDesignator string
	CodingSchemeVersion    string
	CodeMeaning            string
}

// NewCodedEntry returns a coded entry without scheme version.
func NewCodedEntry(value, scheme, meaning string) CodedEntry {
	return CodedEntry{CodeValue: value, CodingSchemeDesignator: scheme, CodeMeaning: meaning}
}

// IsEmpty reports whether all components are empty.
func (c CodedEntry) IsEmpty() bool {
	return c == CodedEntry{}
}

// IsValid reports whether the mandatory components are present.
func (c CodedEntry) IsValid() bool {
	return c.Check() == nil
}

// Check validates the code triplet.
func (c CodedEntry) Check() error {
	if c.CodeValue == "" || c.CodingSchemeDesignator == "" || c.CodeMeaning == "" {
		return fmt.Errorf("incomplete code %s: %w", c, srerrors.ErrInvalidValue)
	}
	if len(c.CodeValue) > 16 || len(c.CodingSchemeDesignator) > 16 || len(c.CodeMeaning) > 64 {
		return fmt.Errorf("code %s exceeds value length: %w", c, srerrors.ErrVRViolation)
	}
	return nil
}

// Equal compares value and scheme designator; the scheme version only
// counts when both entries carry one. The meaning is ignored.
func (c CodedEntry) Equal(other CodedEntry) bool {
	if c.CodeValue != other.CodeValue || c.CodingSchemeDesignator != other.CodingSchemeDesignator {
		return false
	}
	if c.CodingSchemeVersion != "" && other.CodingSchemeVersion != "" {
		return c.CodingSchemeVersion == other.CodingSchemeVersion
	}
	return true
}

// String formats the entry as (value,scheme[version],"meaning").
func (c CodedEntry) String() string {
	scheme := c.CodingSchemeDesignator
	if c.CodingSchemeVersion != "" {
		scheme += "[" + c.CodingSchemeVersion + "]"
	}
	return fmt.Sprintf("(%s,%s,%q)", c.CodeValue, scheme, c.CodeMeaning)
}

// readItem reads the code attributes of a sequence item.
func (c *CodedEntry) readItem(item *dicom.Dataset) error {
	var k errKeeper
	c.CodeValue = k.keep(item.GetAndCheckString(dicom.CodeValue, "1", dicom.Type1))
	c.CodingSchemeDesignator = k.keep(item.GetAndCheckString(dicom.CodingSchemeDesignator, "1", dicom.Type1))
	c.CodingSchemeVersion = k.keep(item.GetAndCheckString(dicom.CodingSchemeVersion, "1", dicom.Type1C))
	c.CodeMeaning = k.keep(item.GetAndCheckString(dicom.CodeMeaning, "1", dicom.Type1))
	return k.err
}

func (c CodedEntry) writeItem(item *dicom.Dataset) {
	item.PutString(dicom.CodeValue, c.CodeValue)
	item.PutString(dicom.CodingSchemeDesignator, c.CodingSchemeDesignator)
	if c.CodingSchemeVersion != "" {
		item.PutString(dicom.CodingSchemeVersion, c.CodingSchemeVersion)
	}
	item.PutString(dicom.CodeMeaning, c.CodeMeaning)
}

// readCodeSequence reads the single item of a code sequence. An absent
// sequence is an error only for Type 1 and Type 2 attributes.
func readCodeSequence(ds *dicom.Dataset, tag dicom.Tag, attrType string) (CodedEntry, error) {
	var c CodedEntry
	items := ds.GetSequence(tag)
	if len(items) == 0 {
		if ds.HasElement(tag) && (attrType == dicom.Type1 || attrType == dicom.Type1C) {
			return c, srerrors.NewAttributeError(tag.String(), dicom.TagName(tag), "", srerrors.ErrMandatoryAttributeEmpty)
		}
		if !ds.HasElement(tag) && (attrType == dicom.Type1 || attrType == dicom.Type2) {
			return c, srerrors.NewAttributeError(tag.String(), dicom.TagName(tag), "", srerrors.ErrMandatoryAttributeMissing)
		}
		return c, nil
	}
	if len(items) > 1 {
		return c, srerrors.NewAttributeError(tag.String(), dicom.TagName(tag), "", srerrors.ErrVMViolation)
	}
	err := c.readItem(items[0])
	return c, err
}

func writeCodeSequence(ds *dicom.Dataset, tag dicom.Tag, c CodedEntry) {
	c.writeItem(ds.AppendSequenceItem(tag))
}

// writeXML adds the code components to el.
func (c CodedEntry) writeXML(el *etree.Element, flags XMLFlags) {
	if flags&XMLCodeComponentsAsAttribute != 0 {
		el.CreateAttr("codValue", c.CodeValue)
		el.CreateAttr("codScheme", c.CodingSchemeDesignator)
		if c.CodingSchemeVersion != "" || flags&XMLWriteEmptyTags != 0 {
			el.CreateAttr("codVersion", c.CodingSchemeVersion)
		}
	} else {
		el.CreateElement("value").SetText(c.CodeValue)
		scheme := el.CreateElement("scheme")
		scheme.CreateElement("designator").SetText(c.CodingSchemeDesignator)
		if c.CodingSchemeVersion != "" || flags&XMLWriteEmptyTags != 0 {
			scheme.CreateElement("version").SetText(c.CodingSchemeVersion)
		}
	}
	el.CreateElement("meaning").SetText(c.CodeMeaning)
}

// readCodedEntryXML accepts both the attribute and the element form.
func readCodedEntryXML(doc *XMLDocument, cursor XMLCursor) (CodedEntry, error) {
	var c CodedEntry
	if !cursor.Valid() {
		return c, nil
	}
	if doc.HasAttribute(cursor, "codValue") {
		c.CodeValue = doc.GetAttribute(cursor, "codValue")
		c.CodingSchemeDesignator = doc.GetAttribute(cursor, "codScheme")
		c.CodingSchemeVersion = doc.GetAttribute(cursor, "codVersion")
	} else {
		c.CodeValue = doc.GetNamedChildText(cursor, "value")
		scheme, _ := doc.GetNamedChild(cursor, "scheme", false)
		c.CodingSchemeDesignator = doc.GetNamedChildText(scheme, "designator")
		c.CodingSchemeVersion = doc.GetNamedChildText(scheme, "version")
	}
	c.CodeMeaning = doc.GetNamedChildText(cursor, "meaning")
	if err := c.Check(); err != nil {
		return c, srerrors.NewXMLError(doc.FullPath(cursor), "reading code", err)
	}
	return c, nil
}
