package subbuf

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
	"golang.org/x/exp/slog"
)

type cachedView struct {
	version uint64
	view    ViewHandle
}

// View returns a derived view over the segment, created through the region's ExecutionContext. Views are
// cached per segment and recreated when the segment's version changes.
func (r *Region) View(segment Segment) (ViewHandle, error) {
	info, err := r.checkOwnership(segment)
	if err != nil {
		return nil, err
	}

	cached, ok := r.views.Get(segment.handle)
	if ok && cached.version == info.Version {
		return cached.view, nil
	}

	if ok {
		r.releaseView(cached.view)
		r.views.Delete(segment.handle)
	}

	view, err := r.context.CreateView(r.backing, info)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create view for segment %s", segment.handle)
	}

	r.views.Put(segment.handle, cachedView{version: info.Version, view: view})
	return view, nil
}

func (r *Region) evictView(handle metadata.SegmentHandle) {
	cached, ok := r.views.Get(handle)
	if !ok {
		return
	}

	r.releaseView(cached.view)
	r.views.Delete(handle)
}

func (r *Region) releaseViews() {
	r.views.Iter(func(handle metadata.SegmentHandle, cached cachedView) bool {
		r.releaseView(cached.view)
		return false
	})
	r.views.Clear()
}

func (r *Region) releaseView(view ViewHandle) {
	releaser, ok := r.context.(ViewReleaser)
	if !ok {
		return
	}

	err := releaser.ReleaseView(view)
	if err != nil {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to release view",
			slog.String("region", r.name),
			slog.Any("error", err),
		)
	}
}
