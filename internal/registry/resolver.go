package registry

import (
	"context"

	"github.com/novelforge/source-registry/internal/handler"
	"github.com/novelforge/source-registry/internal/logger"
)

// Prepare resolves a target URL to a ready handler instance. An optional
// ad-hoc script path is force-loaded first, after refreshing rejections
// from the stored catalog. Rejection is checked against the literal URL
// only; dispatch lookup then tries the exact URL, its hostname, the
// www-stripped URL and the www-stripped hostname, in that order.
func (r *Registry) Prepare(ctx context.Context, targetURL, adHocFile string) (*handler.Instance, error) {
	hostname := hostnameOf(targetURL)
	noWWW := stripWWW(targetURL)
	noWWWHostname := hostnameOf(noWWW)
	if hostname == "" || noWWWHostname == "" {
		return nil, &InvalidURLError{URL: targetURL}
	}

	if adHocFile != "" {
		if current, err := r.store.Load(); err == nil {
			r.rejections.Merge(current.Rejected)
		}
		r.AddFromPath(adHocFile, true)
	}

	if reason, ok := r.rejections.Reason(targetURL); ok {
		return nil, &RejectedSourceError{URL: targetURL, Reason: reason}
	}

	var desc *handler.Descriptor
	for _, key := range []string{targetURL, hostname, noWWW, noWWWHostname} {
		if d, ok := r.Lookup(key); ok {
			desc = d
			break
		}
	}
	if desc == nil {
		return nil, &NotFoundError{Hostname: hostname}
	}

	r.log.Debug("resolved handler",
		logger.String("url", targetURL),
		logger.String("file", desc.FilePath))
	return desc.NewInstance(ctx, targetURL)
}
