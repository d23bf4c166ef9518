package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E049)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Hook order changed between renders",
		Detail:   "A component called a different number or sequence of hooks than it did on a previous render. Hooks must run unconditionally, in the same order, on every render of a component.",
		DocURL:   "https://loom.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Hook slot type mismatch",
		Detail:   "The value stored in a hook slot has a different type than the hook reading it expects. This usually means hook calls were reordered or placed behind a condition.",
		DocURL:   "https://loom.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Store resource missing",
		Detail:   "UseResource read a singleton type that was never inserted into the store. Insert the resource before mounting components that read it.",
		DocURL:   "https://loom.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Store property missing",
		Detail:   "A linked-state property vanished from the node's store entry between renders. External systems may read and mutate linked properties but must not remove them.",
		DocURL:   "https://loom.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Unknown root handle",
		Detail:   "UnmountRoot was called with a handle that does not refer to a mounted root. Roots can only be unmounted once.",
		DocURL:   "https://loom.dev/docs/errors/E005",
	},

	// ============================================
	// Protocol Errors (E050-E069)
	// ============================================

	"E050": {
		Category: CategoryProtocol,
		Message:  "Malformed inspection frame",
		Detail:   "A devtools frame failed to decode. The stream may be truncated or produced by an incompatible version.",
		DocURL:   "https://loom.dev/docs/errors/E050",
	},
	"E051": {
		Category: CategoryProtocol,
		Message:  "Trace archive operation failed",
		Detail:   "The archive backend rejected the operation. Check credentials, bucket configuration, and connectivity.",
		DocURL:   "https://loom.dev/docs/errors/E051",
	},

	// ============================================
	// Config Errors (E070-E089)
	// ============================================

	"E070": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No loom.yaml was found at the given path.",
		DocURL:   "https://loom.dev/docs/errors/E070",
	},
	"E071": {
		Category: CategoryConfig,
		Message:  "Config file is not valid YAML",
		Detail:   "loom.yaml exists but could not be parsed.",
		DocURL:   "https://loom.dev/docs/errors/E071",
	},
	"E072": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field holds a value outside its allowed range.",
		DocURL:   "https://loom.dev/docs/errors/E072",
	},

	// ============================================
	// CLI Errors (E090-E099)
	// ============================================

	"E090": {
		Category: CategoryCLI,
		Message:  "Standard output is not a terminal",
		Detail:   "The demo renders to the terminal. Redirecting output is only supported together with --frames.",
		DocURL:   "https://loom.dev/docs/errors/E090",
	},
}

// Registered reports whether a code exists in the registry.
func Registered(code string) bool {
	_, ok := registry[code]
	return ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
