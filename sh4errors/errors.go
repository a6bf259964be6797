package sh4errors

import (
	"errors"
	"strings"
)

// Compilation (C) Errors. Recovered by interpreting the block.
var (
	ErrCUnsupportedOp  = errors.New("C1|UnsupportedOp: Backend cannot lower an IR operation.")
	ErrCArenaFull      = errors.New("C2|ArenaFull: Executable arena has no room for the block.")
	ErrCInvalidBlock   = errors.New("C3|InvalidBlock: Block has no instructions or no exit.")
	ErrCNoNativeCalls  = errors.New("C4|NoNativeCalls: Host cannot call generated code.")
	ErrCCodeTooLarge   = errors.New("C5|CodeTooLarge: Generated code exceeds the per-block limit.")
	ErrCMapUnavailable = errors.New("C6|MapUnavailable: Memory map missing while resolving accesses.")
)

// Invariant Violation (V) Errors. Programming errors inside the core.
var (
	ErrVSSAInvalid      = errors.New("V1|SSAInvalid: IR value used before definition or defined twice.")
	ErrVLiveOutChanged  = errors.New("V2|LiveOutChanged: Optimization changed a live-out register.")
	ErrVDecodeGap       = errors.New("V3|DecodeGap: Opcode kind without interpreter or emitter entry.")
	ErrVDecodeConflict  = errors.New("V4|DecodeConflict: Two table entries claim the same opcode.")
	ErrVBadTransition   = errors.New("V5|BadTransition: Block cache entry moved to an illegal state.")
	ErrVMissingTerminal = errors.New("V6|MissingTerminal: Block does not end in an exit operation.")
)

// State (S) Errors. Save-state encoding and history.
var (
	ErrSBadMagic       = errors.New("S1|BadMagic: Blob is not an SH4 context snapshot.")
	ErrSBadVersion     = errors.New("S2|BadVersion: Snapshot version is not supported.")
	ErrSTruncated      = errors.New("S3|Truncated: Snapshot is shorter than its header claims.")
	ErrSDigestMismatch = errors.New("S4|DigestMismatch: Stored digest does not match snapshot bytes.")
	ErrSNotFound       = errors.New("S5|NotFound: No snapshot recorded for the requested frame.")
)

// Driver (D) Errors.
var (
	ErrDStopped      = errors.New("D1|Stopped: Run interrupted by a stop request.")
	ErrDBadConfig    = errors.New("D2|BadConfig: Driver configuration is invalid.")
	ErrDUnknownBack  = errors.New("D3|UnknownBackend: Backend name is not recognised.")
	ErrDBadInterrupt = errors.New("D4|BadInterrupt: Interrupt level must be within 1..15.")
)

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	if len(parts) < 2 {
		return errStr
	}
	nameDesc := parts[1]
	// Split on ':' to separate the error name from its description.
	nameParts := strings.SplitN(nameDesc, ":", 2)
	return strings.TrimSpace(nameParts[0])
}

func GetErrorNames(errs []error) []string {
	errStrs := make([]string, len(errs))
	for i, err := range errs {
		errStrs[i] = GetErrorName(err)
	}
	return errStrs
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	parts := strings.SplitN(errStr, ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
