package handler

import (
	"context"
	"fmt"
	"net/url"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Instance is a handler prepared for a specific target URL. It is the
// value returned to callers by the resolver; the extraction operations
// dispatch into the handler script.
type Instance struct {
	// NovelURL is the target URL the instance was prepared for.
	NovelURL string

	// HomeURL is the scheme://hostname/ root of the target.
	HomeURL string

	desc   *Descriptor
	thread *starlark.Thread
}

// Descriptor returns the descriptor this instance was created from.
func (in *Instance) Descriptor() *Descriptor {
	return in.desc
}

// NewInstance binds the handler to a target URL, runs the script's
// initialization hook if it declares one, and returns the ready instance.
// Initialization errors propagate to the caller unrecovered.
func (d *Descriptor) NewInstance(ctx context.Context, targetURL string) (*Instance, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target URL: %w", err)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return nil, fmt.Errorf("target URL has no hostname: %s", targetURL)
	}

	in := &Instance{
		NovelURL: targetURL,
		HomeURL:  fmt.Sprintf("%s://%s/", parsed.Scheme, hostname),
		desc:     d,
		thread:   &starlark.Thread{Name: "instance:" + hostname},
	}

	if init := callable(d.script.initialize); init != nil {
		if _, err := in.call(ctx, init, in.selfStruct()); err != nil {
			return nil, fmt.Errorf("handler initialization failed: %w", err)
		}
	}

	return in, nil
}

// selfStruct exposes the instance state to script functions.
func (in *Instance) selfStruct() starlark.Value {
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"novel_url": starlark.String(in.NovelURL),
		"home_url":  starlark.String(in.HomeURL),
	})
}

// call invokes a script function on the instance thread. The context
// cancels a running script call.
func (in *Instance) call(ctx context.Context, fn starlark.Callable, args ...starlark.Value) (starlark.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		in.thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	return starlark.Call(in.thread, fn, starlark.Tuple(args), nil)
}

// asGoString renders a script return value for Go callers. Strings come
// back unquoted; other values use their display form.
func asGoString(v starlark.Value) string {
	if v == nil || v == starlark.None {
		return ""
	}
	if s, ok := starlark.AsString(v); ok {
		return s
	}
	return v.String()
}

// ReadNovelInfo runs the handler's informational extraction operation.
func (in *Instance) ReadNovelInfo(ctx context.Context) (string, error) {
	v, err := in.call(ctx, callable(in.desc.script.readNovelInfo), in.selfStruct())
	if err != nil {
		return "", fmt.Errorf("read_novel_info failed: %w", err)
	}
	return asGoString(v), nil
}

// DownloadChapterBody runs the handler's content-body extraction operation
// for one chapter URL.
func (in *Instance) DownloadChapterBody(ctx context.Context, chapterURL string) (string, error) {
	v, err := in.call(ctx, callable(in.desc.script.downloadChapterBody),
		in.selfStruct(), starlark.String(chapterURL))
	if err != nil {
		return "", fmt.Errorf("download_chapter_body failed: %w", err)
	}
	return asGoString(v), nil
}

// SearchNovel runs the handler's optional search operation.
func (in *Instance) SearchNovel(ctx context.Context, query string) (string, error) {
	fn := callable(in.desc.script.searchNovel)
	if fn == nil {
		return "", ErrNotSupported
	}
	v, err := in.call(ctx, fn, in.selfStruct(), starlark.String(query))
	if err != nil {
		return "", fmt.Errorf("search_novel failed: %w", err)
	}
	return asGoString(v), nil
}

// Login runs the handler's optional login operation.
func (in *Instance) Login(ctx context.Context, username, password string) error {
	fn := callable(in.desc.script.login)
	if fn == nil {
		return ErrNotSupported
	}
	if _, err := in.call(ctx, fn, in.selfStruct(),
		starlark.String(username), starlark.String(password)); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

// Logout runs the handler's optional logout operation.
func (in *Instance) Logout(ctx context.Context) error {
	fn := callable(in.desc.script.logout)
	if fn == nil {
		return ErrNotSupported
	}
	if _, err := in.call(ctx, fn, in.selfStruct()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}
