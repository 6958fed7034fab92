package errors

import (
	"fmt"
	"strings"
)

// Common error wrapping patterns used throughout the codebase

// WrapParseError wraps a type or annotation expression parse failure
func WrapParseError(what, text string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("invalid %s %q", what, text), cause).
		WithContext("expression", text)
}

// WrapManifestError wraps a manifest decoding failure
func WrapManifestError(path string, cause error) *BaseError {
	return Wrap(ManifestErrorCode, "failed to decode manifest", cause).
		WithLocation(SourceLocation{File: path})
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// NewInternalError reports an unexpected failure while introspecting a
// declaration. chain lists the declarations that led to it, outermost first.
func NewInternalError(chain []string, cause interface{}) *BaseError {
	element := ""
	if len(chain) > 0 {
		element = chain[len(chain)-1]
	}
	err := Newf(InternalErrorCode, "unexpected failure while processing %s: %v", strings.Join(chain, " -> "), cause).
		WithElement(element).
		WithContext("trace", append([]string(nil), chain...))
	if e, ok := cause.(error); ok {
		err.Cause = e
		err.Message = fmt.Sprintf("unexpected failure while processing %s", strings.Join(chain, " -> "))
	}
	return err.WithSuggestion("this is a bug in bindgraph, please report it with the manifest that triggered it")
}

// NewDeferralError reports a component that never became resolvable
func NewDeferralError(element string, rounds int, pending []string) *BaseError {
	return Newf(DeferralErrorCode, "could not be resolved after %d rounds; still waiting for %s", rounds, strings.Join(pending, ", ")).
		WithElement(element).
		WithContext("pending", pending)
}
