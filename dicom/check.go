package dicom

import (
	"regexp"
	"strconv"
	"strings"

	srerrors "github.com/caio-sobreiro/dicomsr/errors"
)

// Attribute types as used in the IOD module tables.
const (
	Type1  = "1"
	Type1C = "1C"
	Type2  = "2"
	Type2C = "2C"
	Type3  = "3"
)

var (
	uidPattern      = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.(0|[1-9][0-9]*))*$`)
	codeStrPattern  = regexp.MustCompile(`^[A-Z0-9_ ]*$`)
	datePattern     = regexp.MustCompile(`^[0-9]{4}(0[1-9]|1[0-2])(0[1-9]|[12][0-9]|3[01])$`)
	timePattern     = regexp.MustCompile(`^([01][0-9]|2[0-3])([0-5][0-9]([0-5][0-9]|60)?)?(\.[0-9]{1,6})?$`)
	dateTimePattern = regexp.MustCompile(`^[0-9]{4}((0[1-9]|1[0-2])((0[1-9]|[12][0-9]|3[01])(([01][0-9]|2[0-3])([0-5][0-9]([0-5][0-9]|60)?(\.[0-9]{1,6})?)?)?)?)?([+-][0-9]{4})?$`)
)

// IsValidUID checks the UI value representation.
func IsValidUID(value string) bool {
	return len(value) <= 64 && uidPattern.MatchString(value)
}

// IsValidCodeString checks the CS value representation.
func IsValidCodeString(value string) bool {
	return len(value) <= 16 && codeStrPattern.MatchString(value)
}

// IsValidDate checks the DA value representation (YYYYMMDD).
func IsValidDate(value string) bool {
	return datePattern.MatchString(value)
}

// IsValidTime checks the TM value representation (HH[MM[SS[.FFFFFF]]]).
func IsValidTime(value string) bool {
	return timePattern.MatchString(value)
}

// IsValidDateTime checks the DT value representation.
func IsValidDateTime(value string) bool {
	return len(value) <= 26 && dateTimePattern.MatchString(value)
}

// IsValidDecimalString checks a single DS value.
func IsValidDecimalString(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 16 {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// CheckVR validates a single value against a string VR. VRs without a
// checker always pass.
func CheckVR(vr, value string) bool {
	if value == "" {
		return true
	}
	switch vr {
	case VR_UI:
		return IsValidUID(value)
	case VR_CS:
		return IsValidCodeString(value)
	case VR_DA:
		return IsValidDate(value)
	case VR_TM:
		return IsValidTime(value)
	case VR_DT:
		return IsValidDateTime(value)
	case VR_DS:
		return IsValidDecimalString(value)
	}
	return true
}

// CheckVM reports whether count values satisfy a value multiplicity such as
// "1", "1-3", "1-n" or "2-2n".
func CheckVM(count int, vm string) bool {
	if vm == "" {
		return true
	}
	low, high, found := strings.Cut(vm, "-")
	minimum, err := strconv.Atoi(low)
	if err != nil {
		return false
	}
	if !found {
		return count == minimum
	}
	if count < minimum {
		return false
	}
	switch {
	case high == "n":
		return true
	case strings.HasSuffix(high, "n"):
		step, err := strconv.Atoi(strings.TrimSuffix(high, "n"))
		if err != nil || step == 0 {
			return false
		}
		return count%step == 0
	}
	maximum, err := strconv.Atoi(high)
	if err != nil {
		return false
	}
	return count <= maximum
}

// GetAndCheckString returns the value of a string attribute after checking
// presence according to its attribute type, its value multiplicity and its
// value representation. The value is returned even when a check fails.
func (d *Dataset) GetAndCheckString(tag Tag, vm, attrType string) (string, error) {
	element, exists := d.GetElement(tag)
	name := TagName(tag)
	if !exists {
		if attrType == Type1 || attrType == Type2 {
			return "", srerrors.NewAttributeError(tag.String(), name, "", srerrors.ErrMandatoryAttributeMissing)
		}
		return "", nil
	}

	value := d.GetString(tag)
	if value == "" {
		if attrType == Type1 || attrType == Type1C {
			return "", srerrors.NewAttributeError(tag.String(), name, "", srerrors.ErrMandatoryAttributeEmpty)
		}
		return "", nil
	}

	values := d.GetStrings(tag)
	if !CheckVM(len(values), vm) {
		return value, srerrors.NewAttributeError(tag.String(), name, value, srerrors.ErrVMViolation)
	}
	vr := element.VR
	if vr == "" || vr == VR_UN {
		vr = LookupVR(tag)
	}
	for _, v := range values {
		if !CheckVR(vr, v) {
			return value, srerrors.NewAttributeError(tag.String(), name, value, srerrors.ErrVRViolation)
		}
	}
	return value, nil
}
