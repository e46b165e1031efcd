// Package resolver computes the version a release will carry.
package resolver

import (
	"context"
	"fmt"

	"github.com/indaco/relkit/internal/detector"
	"github.com/indaco/relkit/internal/logging"
	"github.com/indaco/relkit/internal/semver"
	"github.com/indaco/relkit/internal/versionfile"
)

// Override carries the user's version request.
type Override struct {
	// Version is an explicit target version; it wins over Bump.
	Version string

	// Bump defaults to semver.BumpPatch.
	Bump semver.BumpKind

	// PreRelease is appended to the computed version. With
	// semver.BumpPrerelease it names the channel instead.
	PreRelease string
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Current is the highest version read across the version files, or
	// 0.0.0 when none could be read.
	Current semver.SemVersion

	// Source is the file that supplied Current; empty for the default.
	Source string

	Next     semver.SemVersion
	Bump     semver.BumpKind
	Explicit bool

	// Unreadable lists version files that exist but could not be read.
	Unreadable []string
}

// VersionReader reads the version declared by a version file.
type VersionReader interface {
	ReadVersion(ctx context.Context, root string, t versionfile.Target) (semver.SemVersion, bool, error)
}

var _ VersionReader = (*versionfile.Registry)(nil)

// Resolver computes release versions.
type Resolver struct {
	reader VersionReader
}

// New creates a Resolver reading files through reader.
func New(reader VersionReader) *Resolver {
	return &Resolver{reader: reader}
}

// Current returns the highest version declared across the profile's version
// files. Files are visited in priority order and ties keep the first file.
func (r *Resolver) Current(ctx context.Context, profile *detector.ProjectProfile) (semver.SemVersion, string, []string) {
	log := logging.G(ctx).WithField("component", "resolver")

	var (
		best       semver.SemVersion
		source     string
		found      bool
		unreadable []string
	)
	for _, t := range profile.VersionFiles {
		v, ok, err := r.reader.ReadVersion(ctx, profile.Root, t)
		if err != nil {
			log.WithError(err).Debugf("cannot read %s", t.Path)
			unreadable = append(unreadable, t.Path)
			continue
		}
		if !ok {
			log.Debugf("%s declares no version", t.Path)
			continue
		}
		log.Debugf("%s declares %s", t.Path, v)
		if !found || v.Compare(best) > 0 {
			best, source, found = v, t.Path, true
		}
	}
	return best, source, unreadable
}

// Resolve computes the next version for profile. An explicit version that
// does not parse returns an error wrapping semver.ErrInvalidVersion.
func (r *Resolver) Resolve(ctx context.Context, profile *detector.ProjectProfile, o Override) (Resolution, error) {
	res := Resolution{Bump: o.Bump}
	if res.Bump == "" {
		res.Bump = semver.BumpPatch
	}
	if !res.Bump.IsValid() {
		return Resolution{}, fmt.Errorf("invalid bump kind %q", res.Bump)
	}
	if o.PreRelease != "" {
		if err := semver.ValidatePreRelease(o.PreRelease); err != nil {
			return Resolution{}, err
		}
	}

	res.Current, res.Source, res.Unreadable = r.Current(ctx, profile)

	if o.Version != "" {
		next, err := semver.ParseVersion(o.Version)
		if err != nil {
			return Resolution{}, err
		}
		if o.PreRelease != "" {
			next.PreRelease = o.PreRelease
		}
		res.Next, res.Explicit = next, true
		return res, nil
	}

	next, err := semver.Bump(res.Current, res.Bump, o.PreRelease)
	if err != nil {
		return Resolution{}, err
	}
	if o.PreRelease != "" && res.Bump != semver.BumpPrerelease {
		next.PreRelease = o.PreRelease
	}
	res.Next = next
	return res, nil
}
