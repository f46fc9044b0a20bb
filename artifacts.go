package mmlmp3

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// tempPrefix starts names of all temporary artifacts.
const tempPrefix = "mmlmp3-"

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// artifacts are temporary files of a single run.
type artifacts struct {
	events    string
	container string
	// created holds paths that must be removed at the end of run.
	created []string
}

func newArtifacts(dir, run string) *artifacts {
	base := filepath.Join(dir, tempPrefix+run)
	return &artifacts{
		events:    base + ".mid",
		container: base + ".wav",
	}
}

// track marks path for removal.
func (a *artifacts) track(path string) {
	a.created = append(a.created, path)
}

// cleanup removes every tracked artifact. Missing files are ignored.
func (a *artifacts) cleanup(l logrus.FieldLogger) error {
	var errs cleanupErrors
	for _, path := range a.created {
		err := os.Remove(path)
		switch {
		case err == nil:
			l.WithField("path", path).Debug("removed temporary file")
		case errors.Is(err, os.ErrNotExist):
		default:
			errs = append(errs, fmt.Errorf("remove %v: %w", path, err))
		}
	}
	a.created = nil
	return errs.ret()
}
