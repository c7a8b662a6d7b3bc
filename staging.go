package subbuf

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"golang.org/x/exp/slog"
)

// claimStaging allocates size bytes of this region for a single staged write. Every staged write gets its
// own range, so a write never overwrites staging data that a copy recorded earlier has not read yet.
func (r *Region) claimStaging(size int) (Segment, error) {
	if r.metadata == nil {
		return Segment{}, errors.Wrapf(memutils.StagingRequiredError, "staging region %q has been destroyed", r.name)
	}

	handle, err := r.metadata.Allocate(size, 1)
	if err != nil {
		return Segment{}, errors.WithSecondaryError(
			errors.Wrapf(memutils.StagingRequiredError, "staging region %q has no free range of %d bytes", r.name, size),
			err)
	}

	r.segmentsChanged()
	return r.segment(handle), nil
}

// StagingClaims returns the number of staging ranges held by staged writes into this region
func (r *Region) StagingClaims() int {
	return len(r.stagingClaims)
}

// ReleaseStaging returns every staging range claimed by staged writes into this region to its staging
// region. It is called by Apply, Clear and Destroy, and may be called directly once the copies out of
// those ranges have executed.
func (r *Region) ReleaseStaging() error {
	var err error
	for _, claim := range r.stagingClaims {
		err = errors.CombineErrors(err, claim.region.Deallocate(claim))
	}
	r.stagingClaims = r.stagingClaims[:0]

	return err
}

func (r *Region) releaseStagingOrLog() {
	err := r.ReleaseStaging()
	if err != nil {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to release staging ranges",
			slog.String("region", r.name),
			slog.Any("error", err),
		)
	}
}
