// Package browser implements the CDP Browser domain: static version info,
// command-line echo, and a no-op close (spec.md §4.10). Grounded on
// vango's cmd/vango version.go (build-time version/commit/date vars
// reported verbatim) generalized to the five-field Browser.getVersion
// result the original Rust browser_domain reports.
package browser

import (
	"encoding/json"
	"os"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// VersionInfo is the static identity the server reports.
type VersionInfo struct {
	ProtocolVersion string
	Product         string
	Revision        string
	UserAgent       string
	JSVersion       string
}

// Handler implements the Browser domain.
type Handler struct {
	version VersionInfo
	argv    []string
}

// New creates a Browser handler. argv defaults to os.Args when nil.
func New(version VersionInfo, argv []string) *Handler {
	if argv == nil {
		argv = os.Args
	}
	return &Handler{version: version, argv: argv}
}

func (h *Handler) Name() string { return "Browser" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "getVersion":
		return map[string]string{
			"protocolVersion": h.version.ProtocolVersion,
			"product":         h.version.Product,
			"revision":        h.version.Revision,
			"userAgent":       h.version.UserAgent,
			"jsVersion":       h.version.JSVersion,
		}, nil

	case "getBrowserCommandLine":
		return map[string][]string{"arguments": h.argv}, nil

	case "close":
		return struct{}{}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Browser." + method)
	}
}
