package mcpserver

import (
	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

// Sdump returns a deep, deterministic dump of v for debug logging.
func Sdump(v ...any) string {
	return dumper.Sdump(v...)
}
