package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow "<MODULE>_<NNN>"; ModuleForCode recovers the module prefix.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_014"
)

// Short aliases for the common codes.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
)

// Structure Catalog Error Codes
const (
	ErrCodeStructureIDInvalid   ErrorCode = "STR_001"
	ErrCodeStructureNotFound    ErrorCode = "STR_002"
	ErrCodeChainNotFound        ErrorCode = "STR_003"
	ErrCodeStructureFileMissing ErrorCode = "STR_004"
	ErrCodeSourceUnavailable    ErrorCode = "STR_005"
)

// Similarity Error Codes
const (
	ErrCodeSimilarityIDInvalid        ErrorCode = "SIM_001"
	ErrCodeSimilarityThresholdInvalid ErrorCode = "SIM_002"
	ErrCodeSimilarityRecordNotFound   ErrorCode = "SIM_003"
	ErrCodeSimilarityFieldNotFound    ErrorCode = "SIM_004"
	ErrCodeSimilarityBatchInvalid     ErrorCode = "SIM_005"
	ErrCodeSimilarityUnavailable      ErrorCode = "SIM_006"
)

// Metadata Error Codes
const (
	ErrCodeMetadataNotFound    ErrorCode = "META_001"
	ErrCodeMetadataUnavailable ErrorCode = "META_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,

	ErrCodeStructureIDInvalid:   http.StatusBadRequest,
	ErrCodeStructureNotFound:    http.StatusNotFound,
	ErrCodeChainNotFound:        http.StatusNotFound,
	ErrCodeStructureFileMissing: http.StatusNotFound,
	ErrCodeSourceUnavailable:    http.StatusInternalServerError,

	ErrCodeSimilarityIDInvalid:        http.StatusBadRequest,
	ErrCodeSimilarityThresholdInvalid: http.StatusBadRequest,
	ErrCodeSimilarityRecordNotFound:   http.StatusNotFound,
	ErrCodeSimilarityFieldNotFound:    http.StatusNotFound,
	ErrCodeSimilarityBatchInvalid:     http.StatusBadRequest,
	ErrCodeSimilarityUnavailable:      http.StatusInternalServerError,

	ErrCodeMetadataNotFound:    http.StatusNotFound,
	ErrCodeMetadataUnavailable: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "storage error",

	ErrCodeStructureIDInvalid:   "invalid structure id",
	ErrCodeStructureNotFound:    "structure not found",
	ErrCodeChainNotFound:        "structure chain not found",
	ErrCodeStructureFileMissing: "file missing on server",
	ErrCodeSourceUnavailable:    "structure source unavailable",

	ErrCodeSimilarityIDInvalid:        "invalid structure id",
	ErrCodeSimilarityThresholdInvalid: "invalid threshold",
	ErrCodeSimilarityRecordNotFound:   "no similarity record",
	ErrCodeSimilarityFieldNotFound:    "no similarity field",
	ErrCodeSimilarityBatchInvalid:     "invalid batch",
	ErrCodeSimilarityUnavailable:      "similarity data failed to load",

	ErrCodeMetadataNotFound:    "metadata not found",
	ErrCodeMetadataUnavailable: "metadata failed to load",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
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
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
