package signature

import (
	"errors"
	"fmt"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
	"github.com/caio-sobreiro/dicomsr/sr"
)

// SignMarked signs the dataset item of every marked content item in result
// and attaches the signature to its node. The signatures are stored on the
// next write of the tree.
func SignMarked(result *sr.WriteResult, alg Algorithm, key []byte) ([]*Signature, error) {
	if result == nil || len(result.Marked) == 0 {
		return nil, fmt.Errorf("no marked content items: %w", srerrors.ErrIllegalParameter)
	}
	signatures := make([]*Signature, 0, len(result.Marked))
	for _, m := range result.Marked {
		sig, err := Sign([]*dicom.Dataset{m.Item}, alg, key)
		if err != nil {
			return signatures, err
		}
		sig.MACID = uint16(len(m.Node.DigitalSignatures()) + 1)
		m.Node.AddDigitalSignature(sig.MACParameters(), sig.Dataset())
		signatures = append(signatures, sig)
	}
	return signatures, nil
}

// VerifyMarked checks every signature attached to the marked content items
// of result against the item it was written to. It returns the number of
// signatures checked.
func VerifyMarked(result *sr.WriteResult, key []byte) (int, error) {
	if result == nil {
		return 0, fmt.Errorf("no write result: %w", srerrors.ErrIllegalParameter)
	}
	checked := 0
	var errs []error
	for _, m := range result.Marked {
		params, sigs := m.Node.MACParameters(), m.Node.DigitalSignatures()
		for i := range sigs {
			if i >= len(params) {
				errs = append(errs, fmt.Errorf("signature %d without MAC parameters: %w", i+1, srerrors.ErrMandatoryAttributeMissing))
				continue
			}
			sig, err := FromDatasets(params[i], sigs[i])
			if err == nil {
				err = sig.Verify([]*dicom.Dataset{m.Item}, key)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("signature %s: %w", sig.uid(), err))
			}
			checked++
		}
	}
	return checked, errors.Join(errs...)
}

func (s *Signature) uid() string {
	if s == nil {
		return "?"
	}
	return s.UID
}
