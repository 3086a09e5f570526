package interfaces

import "github.com/caio-sobreiro/dicomsr/dicom"

// DatasetCodec decodes and encodes complete DICOM objects
type DatasetCodec interface {
	Decode(data []byte) (*dicom.Dataset, *dicom.FileMeta, error)
	Encode(ds *dicom.Dataset, meta *dicom.FileMeta) ([]byte, error)
}
