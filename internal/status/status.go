// Package status defines a unified status-code taxonomy for classifying
// errors across the runtime: providers, tools, retrieval, and config all
// report failures through the same XX_YYY code space so callers can make
// retry and logging decisions without type-switching on error values.
package status

import "fmt"

// Category groups related codes. The numeric prefix of a Code always
// matches its Category's range.
type Category int

const (
	CategorySuccess Category = iota
	CategoryCommon
	CategoryInput
	CategoryIO
	CategoryNetwork
	CategoryAuth
	CategoryConfig
	CategoryProvider
	CategoryResource
)

func (c Category) String() string {
	switch c {
	case CategorySuccess:
		return "success"
	case CategoryCommon:
		return "common"
	case CategoryInput:
		return "input"
	case CategoryIO:
		return "io"
	case CategoryNetwork:
		return "network"
	case CategoryAuth:
		return "auth"
	case CategoryConfig:
		return "config"
	case CategoryProvider:
		return "provider"
	case CategoryResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Code is a 5-digit status code: XX_YYY, category in the top two digits.
type Code int

// Meta carries the classification attached to a Code.
type Meta struct {
	Retryable bool
	LogError  bool
	Category  Category
}

const (
	Success Code = 0

	Unknown      Code = 1_000
	Internal     Code = 1_001
	Unsupported  Code = 1_002
	Cancelled    Code = 1_003
	ExternalFail Code = 1_004

	InvalidArguments Code = 2_000
	InvalidRequest   Code = 2_001
	ParseError       Code = 2_002
	InvalidJSON      Code = 2_003

	IOError      Code = 3_000
	FileNotFound Code = 3_001

	NetworkError       Code = 4_000
	ConnectionFailed   Code = 4_001
	ServiceUnavailable Code = 4_002

	AuthenticationFailed Code = 5_000
	PermissionDenied     Code = 5_001
	AccessDenied         Code = 5_002
	AuthHeaderNotFound   Code = 5_003
	InvalidAuthHeader    Code = 5_004

	InvalidConfig   Code = 10_000
	ConfigFileError Code = 10_001

	ProviderNotFound      Code = 11_000
	ModelNotFound         Code = 11_001
	UnsupportedCapability Code = 11_002
	ContextWindowExceeded Code = 11_003
	ProviderError         Code = 11_004
	StreamError           Code = 11_005

	RateLimited        Code = 12_000
	QuotaExceeded      Code = 12_001
	ResourcesExhausted Code = 12_002
	Timeout            Code = 12_003
	DeadlineExceeded   Code = 12_004
)

var metaTable = map[Code]Meta{
	Success: {Retryable: false, LogError: false, Category: CategorySuccess},

	Unknown:      {Retryable: false, LogError: true, Category: CategoryCommon},
	Internal:     {Retryable: true, LogError: true, Category: CategoryCommon},
	Unsupported:  {Retryable: false, LogError: false, Category: CategoryCommon},
	Cancelled:    {Retryable: false, LogError: false, Category: CategoryCommon},
	ExternalFail: {Retryable: false, LogError: true, Category: CategoryCommon},

	InvalidArguments: {Retryable: false, LogError: false, Category: CategoryInput},
	InvalidRequest:   {Retryable: false, LogError: false, Category: CategoryInput},
	ParseError:       {Retryable: false, LogError: false, Category: CategoryInput},
	InvalidJSON:      {Retryable: false, LogError: false, Category: CategoryInput},

	IOError:      {Retryable: false, LogError: false, Category: CategoryIO},
	FileNotFound: {Retryable: false, LogError: false, Category: CategoryIO},

	NetworkError:       {Retryable: true, LogError: false, Category: CategoryNetwork},
	ConnectionFailed:   {Retryable: true, LogError: false, Category: CategoryNetwork},
	ServiceUnavailable: {Retryable: true, LogError: false, Category: CategoryNetwork},

	AuthenticationFailed: {Retryable: false, LogError: false, Category: CategoryAuth},
	PermissionDenied:     {Retryable: false, LogError: false, Category: CategoryAuth},
	AccessDenied:         {Retryable: false, LogError: false, Category: CategoryAuth},
	AuthHeaderNotFound:   {Retryable: false, LogError: false, Category: CategoryAuth},
	InvalidAuthHeader:    {Retryable: false, LogError: false, Category: CategoryAuth},

	InvalidConfig:   {Retryable: false, LogError: false, Category: CategoryConfig},
	ConfigFileError: {Retryable: false, LogError: false, Category: CategoryConfig},

	ProviderNotFound:      {Retryable: false, LogError: false, Category: CategoryProvider},
	ModelNotFound:         {Retryable: false, LogError: false, Category: CategoryProvider},
	UnsupportedCapability: {Retryable: false, LogError: false, Category: CategoryProvider},
	ContextWindowExceeded: {Retryable: false, LogError: false, Category: CategoryProvider},
	ProviderError:         {Retryable: false, LogError: true, Category: CategoryProvider},
	StreamError:           {Retryable: true, LogError: true, Category: CategoryProvider},

	RateLimited:        {Retryable: true, LogError: false, Category: CategoryResource},
	QuotaExceeded:      {Retryable: false, LogError: false, Category: CategoryResource},
	ResourcesExhausted: {Retryable: true, LogError: false, Category: CategoryResource},
	Timeout:            {Retryable: true, LogError: false, Category: CategoryResource},
	DeadlineExceeded:   {Retryable: false, LogError: false, Category: CategoryResource},
}

var nameTable = map[Code]string{
	Success: "Success",

	Unknown:      "Unknown",
	Internal:     "Internal",
	Unsupported:  "Unsupported",
	Cancelled:    "Cancelled",
	ExternalFail: "External",

	InvalidArguments: "InvalidArguments",
	InvalidRequest:   "InvalidRequest",
	ParseError:       "ParseError",
	InvalidJSON:      "InvalidJson",

	IOError:      "IoError",
	FileNotFound: "FileNotFound",

	NetworkError:       "NetworkError",
	ConnectionFailed:   "ConnectionFailed",
	ServiceUnavailable: "ServiceUnavailable",

	AuthenticationFailed: "AuthenticationFailed",
	PermissionDenied:     "PermissionDenied",
	AccessDenied:         "AccessDenied",
	AuthHeaderNotFound:   "AuthHeaderNotFound",
	InvalidAuthHeader:    "InvalidAuthHeader",

	InvalidConfig:   "InvalidConfig",
	ConfigFileError: "ConfigFileError",

	ProviderNotFound:      "ProviderNotFound",
	ModelNotFound:         "ModelNotFound",
	UnsupportedCapability: "UnsupportedCapability",
	ContextWindowExceeded: "ContextWindowExceeded",
	ProviderError:         "ProviderError",
	StreamError:           "StreamError",

	RateLimited:        "RateLimited",
	QuotaExceeded:      "QuotaExceeded",
	ResourcesExhausted: "ResourcesExhausted",
	Timeout:            "Timeout",
	DeadlineExceeded:   "DeadlineExceeded",
}

func init() {
	seen := make(map[Code]struct{}, len(metaTable))
	for c := range metaTable {
		if _, dup := seen[c]; dup {
			panic(fmt.Sprintf("status: duplicate code value %d", c))
		}
		seen[c] = struct{}{}
	}
}

// Meta returns the classification metadata for c. Unknown codes report
// as Category Common, non-retryable, logged — the same defaults as Unknown.
func (c Code) Meta() Meta {
	if m, ok := metaTable[c]; ok {
		return m
	}
	return metaTable[Unknown]
}

// Retryable reports whether operations failing with this code should
// be retried by the caller.
func (c Code) Retryable() bool { return c.Meta().Retryable }

// ShouldLog reports whether this code represents a condition worth
// logging at error level, as opposed to an expected/handled outcome.
func (c Code) ShouldLog() bool { return c.Meta().LogError }

// Category returns the code's category.
func (c Code) Category() Category { return c.Meta().Category }

// String renders the code's symbolic name, e.g. "RateLimited".
func (c Code) String() string {
	if n, ok := nameTable[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// IsSuccess reports whether c represents Success.
func (c Code) IsSuccess() bool { return c == Success }
