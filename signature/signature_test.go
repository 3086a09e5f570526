package signature

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/caio-sobreiro/dicomsr/dicom"
	srerrors "github.com/caio-sobreiro/dicomsr/errors"
)

func items() []*dicom.Dataset {
	first := dicom.NewDataset()
	first.PutString(dicom.ValueType, "TEXT")
	first.PutString(dicom.TextValue, "mass in left lobe")
	second := dicom.NewDataset()
	second.PutString(dicom.ValueType, "CONTAINER")
	second.PutString(dicom.ContinuityOfContent, "SEPARATE")
	return []*dicom.Dataset{first, second}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		term    string
		want    Algorithm
		wantErr bool
	}{
		{"RIPEMD160", RIPEMD160, false},
		{"SHA1", SHA1, false},
		{"SHA256", SHA256, false},
		{"SHA384", SHA384, false},
		{"SHA512", SHA512, false},
		{"MD5", AlgorithmInvalid, true},
		{"", AlgorithmInvalid, true},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.term)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAlgorithm() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAlgorithm() = %v, want %v", got, tt.want)
			}
			if !tt.wantErr && got.DefinedTerm() != tt.term {
				t.Errorf("DefinedTerm() = %q, want %q", got.DefinedTerm(), tt.term)
			}
		})
	}
}

func TestDigest(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		size int
	}{
		{RIPEMD160, 20},
		{SHA1, 20},
		{SHA256, 32},
		{SHA384, 48},
		{SHA512, 64},
	}
	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			sum, err := Digest(items(), tt.alg)
			if err != nil {
				t.Fatalf("Digest() error = %v", err)
			}
			if len(sum) != tt.size {
				t.Errorf("len(Digest()) = %d, want %d", len(sum), tt.size)
			}
			again, _ := Digest(items(), tt.alg)
			if !bytes.Equal(sum, again) {
				t.Errorf("Digest() not deterministic: %s != %s", hex.EncodeToString(sum), hex.EncodeToString(again))
			}
		})
	}
}

func TestDigestIgnoresAttachedSignatures(t *testing.T) {
	plain, _ := Digest(items(), SHA256)
	signed := items()
	signed[0].AddSequence(dicom.DigitalSignaturesSequence, []*dicom.Dataset{dicom.NewDataset()})
	got, _ := Digest(signed, SHA256)
	if !bytes.Equal(plain, got) {
		t.Error("digest changed by an attached signature sequence")
	}
}

func TestDigestErrors(t *testing.T) {
	if _, err := Digest(nil, SHA256); !errors.Is(err, srerrors.ErrIllegalParameter) {
		t.Errorf("Digest(nil) error = %v, want %v", err, srerrors.ErrIllegalParameter)
	}
	if _, err := Digest(items(), AlgorithmInvalid); !errors.Is(err, srerrors.ErrInvalidDigitalSignatureAlgorithm) {
		t.Errorf("Digest(invalid) error = %v, want %v", err, srerrors.ErrInvalidDigitalSignatureAlgorithm)
	}
}

func TestSignVerify(t *testing.T) {
	key := []byte("secret")
	sig, err := Sign(items(), RIPEMD160, key)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if err := sig.Verify(items(), key); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if err := sig.Verify(items(), []byte("other")); !errors.Is(err, srerrors.ErrSignatureVerificationFailed) {
		t.Errorf("Verify(wrong key) error = %v, want %v", err, srerrors.ErrSignatureVerificationFailed)
	}
	tampered := items()
	tampered[0].PutString(dicom.TextValue, "mass in right lobe")
	if err := sig.Verify(tampered, key); !errors.Is(err, srerrors.ErrSignatureVerificationFailed) {
		t.Errorf("Verify(tampered) error = %v, want %v", err, srerrors.ErrSignatureVerificationFailed)
	}
	if _, err := Sign(items(), SHA256, nil); !errors.Is(err, srerrors.ErrIllegalParameter) {
		t.Errorf("Sign(no key) error = %v, want %v", err, srerrors.ErrIllegalParameter)
	}
}

func TestSignatureDatasets(t *testing.T) {
	key := []byte("secret")
	sig, err := Sign(items(), SHA512, key)
	if err != nil {
		t.Fatal(err)
	}
	params, item := sig.MACParameters(), sig.Dataset()
	if got := params.GetString(dicom.MACAlgorithm); got != "SHA512" {
		t.Errorf("MACAlgorithm = %q, want SHA512", got)
	}
	if got := item.GetString(dicom.DigitalSignatureUID); got != sig.UID {
		t.Errorf("DigitalSignatureUID = %q, want %q", got, sig.UID)
	}

	restored, err := FromDatasets(params, item)
	if err != nil {
		t.Fatalf("FromDatasets() error = %v", err)
	}
	if restored.Algorithm != SHA512 || restored.MACID != 1 || !bytes.Equal(restored.MAC, sig.MAC) {
		t.Errorf("FromDatasets() = %+v, want %+v", restored, sig)
	}
	if err := restored.Verify(items(), key); err != nil {
		t.Errorf("restored Verify() error = %v", err)
	}
}
