package handler

import (
	"fmt"

	"go.starlark.net/starlark"
)

// scriptHandler is the value produced by the handler() builtin inside a
// handler script. A script declares one handler per top-level binding:
//
//	novelfull = handler(
//	    base_url = ["https://novelfull.com/"],
//	    read_novel_info = _read_info,
//	    download_chapter_body = _chapter_body,
//	    search_novel = _search,
//	)
//
// The builtin is deliberately permissive: contract validation happens in
// the loader after the script has executed, so a malformed declaration is
// reported as a validation failure of the file rather than a script crash.
type scriptHandler struct {
	baseURL             starlark.Value
	readNovelInfo       starlark.Value
	downloadChapterBody starlark.Value
	login               starlark.Value
	logout              starlark.Value
	searchNovel         starlark.Value
	initialize          starlark.Value
	isDisabled          bool
	disableReason       string
	isTemplate          bool
}

var _ starlark.Value = (*scriptHandler)(nil)

// String implements starlark.Value.
func (h *scriptHandler) String() string {
	return fmt.Sprintf("<handler %s>", h.baseURL)
}

// Type implements starlark.Value.
func (*scriptHandler) Type() string { return "handler" }

// Freeze implements starlark.Value. Module globals are frozen after
// execution; the wrapped values are frozen along with the handler.
func (h *scriptHandler) Freeze() {
	for _, v := range h.members() {
		if v != nil {
			v.Freeze()
		}
	}
}

// Truth implements starlark.Value.
func (*scriptHandler) Truth() starlark.Bool { return starlark.True }

// Hash implements starlark.Value.
func (*scriptHandler) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: handler")
}

// members returns the script members that carry starlark values.
func (h *scriptHandler) members() []starlark.Value {
	return []starlark.Value{
		h.baseURL,
		h.readNovelInfo,
		h.downloadChapterBody,
		h.login,
		h.logout,
		h.searchNovel,
		h.initialize,
	}
}

// callable returns v as a starlark.Callable, or nil when v is absent or
// not callable.
func callable(v starlark.Value) starlark.Callable {
	if c, ok := v.(starlark.Callable); ok {
		return c
	}
	return nil
}

// newHandlerBuiltin returns the handler() constructor predeclared for
// handler scripts.
func newHandlerBuiltin() *starlark.Builtin {
	return starlark.NewBuiltin("handler",
		func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			h := &scriptHandler{}
			if err := starlark.UnpackArgs(b.Name(), args, kwargs,
				"base_url?", &h.baseURL,
				"read_novel_info?", &h.readNovelInfo,
				"download_chapter_body?", &h.downloadChapterBody,
				"login?", &h.login,
				"logout?", &h.logout,
				"search_novel?", &h.searchNovel,
				"initialize?", &h.initialize,
				"is_disabled?", &h.isDisabled,
				"disable_reason?", &h.disableReason,
				"is_template?", &h.isTemplate,
			); err != nil {
				return nil, err
			}
			return h, nil
		})
}

// predeclared returns the global environment available to handler scripts.
func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"handler": newHandlerBuiltin(),
	}
}
