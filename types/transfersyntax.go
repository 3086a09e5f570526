package types

// Transfer syntaxes understood by the dataset codec (PS3.5 Section 10).
const (
	// ImplicitVRLittleEndian is the DICOM default transfer syntax.
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"

	// ExplicitVRLittleEndian is used when writing Part 10 files.
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"

	// ExplicitVRBigEndian is retired and only recognized, never written.
	ExplicitVRBigEndian = "1.2.840.10008.1.2.2"
)

// TransferSyntaxInfo provides metadata about a transfer syntax
type TransferSyntaxInfo struct {
	UID        string
	Name       string
	ExplicitVR bool
	IsRetired  bool
	Supported  bool
}

// GetTransferSyntaxInfo returns information about a transfer syntax UID
func GetTransferSyntaxInfo(uid string) *TransferSyntaxInfo {
	info, ok := transferSyntaxRegistry[uid]
	if !ok {
		return &TransferSyntaxInfo{
			UID:  uid,
			Name: "Unknown",
		}
	}
	return &info
}

// IsSupportedTransferSyntax reports whether the codec can read and write uid.
func IsSupportedTransferSyntax(uid string) bool {
	return GetTransferSyntaxInfo(uid).Supported
}

var transferSyntaxRegistry = map[string]TransferSyntaxInfo{
	ImplicitVRLittleEndian: {
		UID:       ImplicitVRLittleEndian,
		Name:      "Implicit VR Little Endian",
		Supported: true,
	},
	ExplicitVRLittleEndian: {
		UID:        ExplicitVRLittleEndian,
		Name:       "Explicit VR Little Endian",
		ExplicitVR: true,
		Supported:  true,
	},
	ExplicitVRBigEndian: {
		UID:        ExplicitVRBigEndian,
		Name:       "Explicit VR Big Endian",
		ExplicitVR: true,
		IsRetired:  true,
	},
}
