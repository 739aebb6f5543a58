package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/novelforge/source-registry/internal/languages"
	"github.com/novelforge/source-registry/internal/logger"
)

// ScriptExtension is the file extension of handler scripts.
const ScriptExtension = ".star"

// Loader compiles handler script files into descriptors. Results are
// cached per absolute file path; a forced reload invalidates the cached
// entry and rebuilds it from the file's current contents.
//
// The loader is not safe for concurrent use; the registry drives it from a
// single control flow.
type Loader struct {
	log       logger.Logger
	cache     map[string][]*Descriptor
	templates map[string]struct{}
}

// NewLoader creates a new script loader.
func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		log:       log,
		cache:     make(map[string][]*Descriptor),
		templates: make(map[string]struct{}),
	}
}

// Templates returns the identifiers ("path#name") of handler values marked
// as templates. Templates are building blocks for other handlers and are
// never registered for dispatch.
func (l *Loader) Templates() []string {
	ids := make([]string, 0, len(l.templates))
	for id := range l.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fileOptions enables the non-core syntax conveniences handler scripts may
// use.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	Recursion:       true,
}

// Load compiles the handler file at path and returns one descriptor per
// declared handler.
//
// A missing file is a LoadError. A script that fails to execute is logged
// and yields no handlers, without failing the caller's scan. A script that
// executes but violates the handler contract (malformed base URL, missing
// required operation) fails as a whole with a ValidationError: no handlers
// from that file are returned.
func (l *Loader) Load(path string, forceReload bool) ([]*Descriptor, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	if !forceReload {
		if cached, ok := l.cache[absPath]; ok {
			return cached, nil
		}
	}
	delete(l.cache, absPath)

	info, err := os.Stat(absPath)
	if err != nil || !info.Mode().IsRegular() {
		return nil, &LoadError{Path: absPath, Err: ErrNotAFile}
	}

	thread := &starlark.Thread{
		Name: "handler:" + absPath,
		Print: func(_ *starlark.Thread, msg string) {
			l.log.Debug("script output", logger.String("file", absPath), logger.String("msg", msg))
		},
	}

	globals, err := starlark.ExecFileOptions(fileOptions, thread, absPath, nil, predeclared())
	if err != nil {
		// Execution failures skip the file; the surrounding scan continues.
		l.log.Warn("handler script failed to execute",
			logger.String("file", absPath),
			logger.Err(err))
		return nil, nil
	}

	descriptors, err := l.scanGlobals(absPath, globals)
	if err != nil {
		return nil, err
	}

	l.cache[absPath] = descriptors
	return descriptors, nil
}

// scanGlobals walks the script's top-level bindings and builds a descriptor
// for every declared handler.
func (l *Loader) scanGlobals(absPath string, globals starlark.StringDict) ([]*Descriptor, error) {
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	language := languages.FromPath(absPath)

	var descriptors []*Descriptor
	for _, name := range names {
		script, ok := globals[name].(*scriptHandler)
		if !ok {
			continue
		}

		if script.isTemplate {
			l.templates[absPath+"#"+name] = struct{}{}
			continue
		}

		urls := normalizeBaseURLs(baseURLStrings(script.baseURL))
		if len(urls) == 0 {
			// Abstract or incomplete handler; not an error.
			continue
		}
		for _, u := range urls {
			if !baseURLPattern.MatchString(u) {
				return nil, &ValidationError{
					Path:    absPath,
					Handler: name,
					Err:     fmt.Errorf("%w: %s", ErrInvalidBaseURL, u),
				}
			}
		}

		required := []struct {
			member string
			value  starlark.Value
		}{
			{member: "read_novel_info", value: script.readNovelInfo},
			{member: "download_chapter_body", value: script.downloadChapterBody},
		}
		for _, req := range required {
			if callable(req.value) == nil {
				return nil, &ValidationError{
					Path:    absPath,
					Handler: name,
					Err:     fmt.Errorf("%w: %s", ErrMissingRequiredMember, req.member),
				}
			}
		}

		reason := script.disableReason
		if reason == "" {
			reason = DefaultDisableReason
		}

		descriptors = append(descriptors, &Descriptor{
			Name:          name,
			BaseURLs:      urls,
			Language:      language,
			FilePath:      absPath,
			CanLogin:      callable(script.login) != nil,
			CanLogout:     callable(script.logout) != nil,
			CanSearch:     callable(script.searchNovel) != nil,
			Disabled:      script.isDisabled,
			DisableReason: reason,
			script:        script,
		})
	}

	return descriptors, nil
}

// baseURLStrings flattens a script base_url member (string or sequence of
// strings) into a raw string list.
func baseURLStrings(v starlark.Value) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case starlark.String:
		return []string{v.GoString()}
	case starlark.Sequence:
		var urls []string
		iter := v.Iterate()
		defer iter.Done()
		var item starlark.Value
		for iter.Next(&item) {
			if s, ok := starlark.AsString(item); ok {
				urls = append(urls, s)
			}
		}
		return urls
	default:
		return nil
	}
}
