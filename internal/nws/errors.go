package nws

import "errors"

var (
	// ErrEnvelopeParse is returned when the WMO header does not match.
	ErrEnvelopeParse = errors.New("wmo envelope parse")
	// ErrShortReport marks an LSR block with fewer lines than required.
	ErrShortReport = errors.New("short report")
	// ErrAmbiguousTime is returned for an unknown or missing timezone abbreviation.
	ErrAmbiguousTime = errors.New("ambiguous time")
	// ErrHeaderMissing is returned when a tropical product header is not present.
	ErrHeaderMissing = errors.New("header missing")
	// ErrSigmetParse marks an oceanic SIGMET without a coordinate list.
	ErrSigmetParse = errors.New("sigmet parse")
	// ErrInvalidGeometry marks an empty or self-intersecting geometry.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrCorrectionMismatch marks an update that touched an unexpected number of rows.
	ErrCorrectionMismatch = errors.New("correction mismatch")
	// ErrUnknownProduct is returned by the dispatcher when no parser claims a product.
	ErrUnknownProduct = errors.New("unknown product")
)
