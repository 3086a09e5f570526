// Package signature computes MACs over the content items a document tree
// write reports as marked, and builds the MAC Parameters and Digital
// Signatures sequence items that carry them.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"time"

	"golang.org/x/crypto/ripemd160"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
)

// Algorithm is a MAC algorithm.
type Algorithm int

const (
	AlgorithmInvalid Algorithm = iota
	RIPEMD160
	SHA1
	SHA256
	SHA384
	SHA512
)

var algorithmTerms = map[Algorithm]string{
	RIPEMD160: "RIPEMD160",
	SHA1:      "SHA1",
	SHA256:    "SHA256",
	SHA384:    "SHA384",
	SHA512:    "SHA512",
}

// DefinedTerm returns the MAC Algorithm (0400,0015) value.
func (a Algorithm) DefinedTerm() string { return algorithmTerms[a] }

func (a Algorithm) String() string {
	if term := a.DefinedTerm(); term != "" {
		return term
	}
	return "invalid"
}

// ParseAlgorithm maps a MAC Algorithm defined term.
func ParseAlgorithm(term string) (Algorithm, error) {
	for alg, t := range algorithmTerms {
		if t == term {
			return alg, nil
		}
	}
	return AlgorithmInvalid, fmt.Errorf("%q: %w", term, srerrors.ErrInvalidDigitalSignatureAlgorithm)
}

func (a Algorithm) newHash() (func() hash.Hash, error) {
	switch a {
	case RIPEMD160:
		return ripemd160.New, nil
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA384:
		return sha512.New384, nil
	case SHA512:
		return sha512.New, nil
	}
	return nil, fmt.Errorf("algorithm %d: %w", int(a), srerrors.ErrInvalidDigitalSignatureAlgorithm)
}

// writeItems feeds the explicit VR little endian encoding of items to h.
// Signature sequences attached to an item or its nested items are not
// covered.
func writeItems(h hash.Hash, items []*dicom.Dataset) error {
	if len(items) == 0 {
		return fmt.Errorf("no items to sign: %w", srerrors.ErrIllegalParameter)
	}
	for _, item := range items {
		if item == nil {
			return fmt.Errorf("nil item: %w", srerrors.ErrIllegalParameter)
		}
		clean := item.Clone()
		stripSignatures(clean)
		h.Write(clean.EncodeDataset())
	}
	return nil
}

func stripSignatures(ds *dicom.Dataset) {
	ds.RemoveElement(dicom.MACParametersSequence)
	ds.RemoveElement(dicom.DigitalSignaturesSequence)
	for _, tag := range ds.Tags() {
		for _, item := range ds.GetSequence(tag) {
			stripSignatures(item)
		}
	}
}

// Digest returns the plain hash of items.
func Digest(items []*dicom.Dataset, alg Algorithm) ([]byte, error) {
	newHash, err := alg.newHash()
	if err != nil {
		return nil, err
	}
	h := newHash()
	if err := writeItems(h, items); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func mac(items []*dicom.Dataset, alg Algorithm, key []byte) ([]byte, error) {
	newHash, err := alg.newHash()
	if err != nil {
		return nil, err
	}
	h := hmac.New(newHash, key)
	if err := writeItems(h, items); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// Signature is a keyed MAC over a list of items.
type Signature struct {
	Algorithm Algorithm
	MACID     uint16
	UID       string
	// DateTime uses the DICOM DT format.
	DateTime string
	MAC      []byte
}

// Sign computes an HMAC over items with key.
func Sign(items []*dicom.Dataset, alg Algorithm, key []byte) (*Signature, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("empty key: %w", srerrors.ErrIllegalParameter)
	}
	sum, err := mac(items, alg, key)
	if err != nil {
		return nil, err
	}
	return &Signature{
		Algorithm: alg,
		MACID:     1,
		UID:       dicom.NewUID(),
		DateTime:  time.Now().UTC().Format("20060102150405.000000") + "+0000",
		MAC:       sum,
	}, nil
}

// Verify recomputes the MAC over items and compares it with s.
func (s *Signature) Verify(items []*dicom.Dataset, key []byte) error {
	sum, err := mac(items, s.Algorithm, key)
	if err != nil {
		return err
	}
	if !hmac.Equal(sum, s.MAC) {
		return srerrors.ErrSignatureVerificationFailed
	}
	return nil
}

// MACParameters builds the MAC Parameters Sequence item of s.
func (s *Signature) MACParameters() *dicom.Dataset {
	ds := dicom.NewDataset()
	ds.AddElement(dicom.MACIDNumber, dicom.VR_US, []uint16{s.MACID})
	ds.PutString(dicom.MACCalculationTransferSyntaxUID, dicom.TransferSyntaxExplicitVRLittleEndian)
	ds.PutString(dicom.MACAlgorithm, s.Algorithm.DefinedTerm())
	return ds
}

// Dataset builds the Digital Signatures Sequence item of s.
func (s *Signature) Dataset() *dicom.Dataset {
	ds := dicom.NewDataset()
	ds.AddElement(dicom.MACIDNumber, dicom.VR_US, []uint16{s.MACID})
	ds.PutString(dicom.DigitalSignatureUID, s.UID)
	ds.PutString(dicom.DigitalSignatureDateTime, s.DateTime)
	ds.PutString(dicom.CertificateType, "NONE")
	ds.AddElement(dicom.Signature, dicom.VR_OB, bytes.Clone(s.MAC))
	return ds
}

// FromDatasets restores a signature from its MAC Parameters and Digital
// Signatures sequence items.
func FromDatasets(macParameters, signature *dicom.Dataset) (*Signature, error) {
	if macParameters == nil || signature == nil {
		return nil, fmt.Errorf("missing sequence item: %w", srerrors.ErrIllegalParameter)
	}
	term, err := macParameters.GetAndCheckString(dicom.MACAlgorithm, "1", dicom.Type1)
	if err != nil {
		return nil, err
	}
	alg, err := ParseAlgorithm(term)
	if err != nil {
		return nil, err
	}
	s := &Signature{
		Algorithm: alg,
		UID:       signature.GetString(dicom.DigitalSignatureUID),
		DateTime:  signature.GetString(dicom.DigitalSignatureDateTime),
		MAC:       signature.GetBytes(dicom.Signature),
	}
	if ids := signature.GetUint16s(dicom.MACIDNumber); len(ids) > 0 {
		s.MACID = ids[0]
	}
	if len(s.MAC) == 0 {
		return nil, fmt.Errorf("signature: %w", srerrors.ErrMandatoryAttributeEmpty)
	}
	return s, nil
}
