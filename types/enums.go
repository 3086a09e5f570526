package types

// GraphicType enumerates the 2D spatial coordinate shapes (0070,0023).
type GraphicType string

const (
	GraphicTypePoint      GraphicType = "POINT"
	GraphicTypeMultiPoint GraphicType = "MULTIPOINT"
	GraphicTypePolyline   GraphicType = "POLYLINE"
	GraphicTypeCircle     GraphicType = "CIRCLE"
	GraphicTypeEllipse    GraphicType = "ELLIPSE"
)

// IsValid reports whether g is an enumerated value.
func (g GraphicType) IsValid() bool {
	switch g {
	case GraphicTypePoint, GraphicTypeMultiPoint, GraphicTypePolyline, GraphicTypeCircle, GraphicTypeEllipse:
		return true
	}
	return false
}

// PointCount returns the number of (column,row) pairs a shape requires and
// whether more are allowed.
func (g GraphicType) PointCount() (n int, open bool) {
	switch g {
	case GraphicTypePoint:
		return 1, false
	case GraphicTypeCircle:
		return 2, false
	case GraphicTypeEllipse:
		return 4, false
	case GraphicTypeMultiPoint, GraphicTypePolyline:
		return 1, true
	}
	return 0, false
}

// GraphicType3D enumerates the 3D spatial coordinate shapes.
type GraphicType3D string

const (
	GraphicType3DPoint      GraphicType3D = "POINT"
	GraphicType3DMultiPoint GraphicType3D = "MULTIPOINT"
	GraphicType3DPolyline   GraphicType3D = "POLYLINE"
	GraphicType3DPolygon    GraphicType3D = "POLYGON"
	GraphicType3DEllipse    GraphicType3D = "ELLIPSE"
	GraphicType3DEllipsoid  GraphicType3D = "ELLIPSOID"
)

// IsValid reports whether g is an enumerated value.
func (g GraphicType3D) IsValid() bool {
	switch g {
	case GraphicType3DPoint, GraphicType3DMultiPoint, GraphicType3DPolyline,
		GraphicType3DPolygon, GraphicType3DEllipse, GraphicType3DEllipsoid:
		return true
	}
	return false
}

// TemporalRangeType enumerates (0040,A130).
type TemporalRangeType string

const (
	TemporalRangePoint      TemporalRangeType = "POINT"
	TemporalRangeMultipoint TemporalRangeType = "MULTIPOINT"
	TemporalRangeSegment    TemporalRangeType = "SEGMENT"
	TemporalRangeMultiseg   TemporalRangeType = "MULTISEGMENT"
	TemporalRangeBegin      TemporalRangeType = "BEGIN"
	TemporalRangeEnd        TemporalRangeType = "END"
)

// IsValid reports whether t is an enumerated value.
func (t TemporalRangeType) IsValid() bool {
	switch t {
	case TemporalRangePoint, TemporalRangeMultipoint, TemporalRangeSegment,
		TemporalRangeMultiseg, TemporalRangeBegin, TemporalRangeEnd:
		return true
	}
	return false
}

// ContinuityOfContent enumerates (0040,A050) of a container.
type ContinuityOfContent string

const (
	ContinuityInvalid    ContinuityOfContent = ""
	ContinuitySeparate   ContinuityOfContent = "SEPARATE"
	ContinuityContinuous ContinuityOfContent = "CONTINUOUS"
)

// IsValid reports whether c is an enumerated value.
func (c ContinuityOfContent) IsValid() bool {
	return c == ContinuitySeparate || c == ContinuityContinuous
}
