package xarheader

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON renders h as the single-line, whitespace-free JSON object
// documented as the XAR parser CLI's wire format: OFFSET as a bare
// integer, every other field as a JSON string, and
// XAREXEC_TRAMPOLINE_NAMES as a JSON array, in that exact field order.
//
// encoding/json does not guarantee field order for an arbitrary struct
// across Go versions, so the exact ordering this format promises is
// produced by hand rather than left to reflection.
func (h *Header) MarshalJSON() ([]byte, error) {
	trampolines := h.XarexecTrampolineNames
	if trampolines == nil {
		trampolines = []string{}
	}
	names, err := json.Marshal(trampolines)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"OFFSET":%d,`, h.Offset)
	fmt.Fprintf(&buf, `"UUID":%s,`, quoteJSON(h.UUID))
	fmt.Fprintf(&buf, `"VERSION":%s,`, quoteJSON(h.Version))
	fmt.Fprintf(&buf, `"XAREXEC_TARGET":%s,`, quoteJSON(h.XarexecTarget))
	fmt.Fprintf(&buf, `"XAREXEC_TRAMPOLINE_NAMES":%s`, names)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
