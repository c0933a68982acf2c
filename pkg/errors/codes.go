package errors

import (
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are grouped by module prefix: COMMON, DATASET, MOL, SCREEN.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Short aliases used at most call sites.
const (
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeValidation   = ErrCodeValidation
)

// Dataset Module Error Codes
const (
	ErrCodeDatasetFetchFailed   ErrorCode = "DATASET_001"
	ErrCodeDatasetParseFailed   ErrorCode = "DATASET_002"
	ErrCodeDatasetColumnMissing ErrorCode = "DATASET_003"
	ErrCodeDatasetEmpty         ErrorCode = "DATASET_004"
	ErrCodeDatasetSourceInvalid ErrorCode = "DATASET_005"
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES ErrorCode = "MOL_001"
	ErrCodeMoleculeParsingFailed ErrorCode = "MOL_006"
	ErrCodeUnknownElement        ErrorCode = "MOL_016"
	ErrCodeUnclosedRing          ErrorCode = "MOL_017"
	ErrCodeDescriptorFailed      ErrorCode = "MOL_018"
)

// Screening Module Error Codes
const (
	ErrCodeCutoffOutOfRange  ErrorCode = "SCREEN_001"
	ErrCodeUnknownDescriptor ErrorCode = "SCREEN_002"
	ErrCodeUnknownRule       ErrorCode = "SCREEN_003"
	ErrCodeAnnotationFailed  ErrorCode = "SCREEN_004"
)

// ErrorCodeHTTPStatus maps ErrorCode to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusNotImplemented,

	ErrCodeDatasetFetchFailed:   http.StatusBadGateway,
	ErrCodeDatasetParseFailed:   http.StatusBadGateway,
	ErrCodeDatasetColumnMissing: http.StatusBadGateway,
	ErrCodeDatasetEmpty:         http.StatusBadGateway,
	ErrCodeDatasetSourceInvalid: http.StatusInternalServerError,

	ErrCodeMoleculeInvalidSMILES: http.StatusBadRequest,
	ErrCodeMoleculeParsingFailed: http.StatusUnprocessableEntity,
	ErrCodeUnknownElement:        http.StatusUnprocessableEntity,
	ErrCodeUnclosedRing:          http.StatusUnprocessableEntity,
	ErrCodeDescriptorFailed:      http.StatusInternalServerError,

	ErrCodeCutoffOutOfRange:  http.StatusBadRequest,
	ErrCodeUnknownDescriptor: http.StatusBadRequest,
	ErrCodeUnknownRule:       http.StatusNotFound,
	ErrCodeAnnotationFailed:  http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCode to default user-facing messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeDatasetFetchFailed:   "failed to fetch dataset",
	ErrCodeDatasetParseFailed:   "failed to parse dataset",
	ErrCodeDatasetColumnMissing: "dataset is missing a required column",
	ErrCodeDatasetEmpty:         "dataset contains no complete rows",
	ErrCodeDatasetSourceInvalid: "invalid dataset source",

	ErrCodeMoleculeInvalidSMILES: "invalid SMILES",
	ErrCodeMoleculeParsingFailed: "failed to parse molecule",
	ErrCodeUnknownElement:        "unknown element symbol",
	ErrCodeUnclosedRing:          "unclosed ring bond",
	ErrCodeDescriptorFailed:      "descriptor calculation failed",

	ErrCodeCutoffOutOfRange:  "cutoff outside of allowed range",
	ErrCodeUnknownDescriptor: "unknown descriptor",
	ErrCodeUnknownRule:       "unknown screening rule",
	ErrCodeAnnotationFailed:  "descriptor annotation failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GRPCCodeForCode derives a gRPC status code from the HTTP mapping.
func GRPCCodeForCode(code ErrorCode) codes.Code {
	switch HTTPStatusForCode(code) {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return codes.Unavailable
	case http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	case http.StatusNotImplemented:
		return codes.Unimplemented
	default:
		return codes.Internal
	}
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
