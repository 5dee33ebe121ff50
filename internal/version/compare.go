package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// CheckJournalCompatibility reports whether a build at readerVersion can append to a
// journal written by writerVersion.
//
// Rules:
//   - "main" on either side skips the check
//   - major versions must match
//   - the writer's minor version must not be newer than the reader's
//   - patch versions may differ
func CheckJournalCompatibility(readerVersion, writerVersion string) error {
	readerVersion = strings.TrimPrefix(readerVersion, "v")
	writerVersion = strings.TrimPrefix(writerVersion, "v")

	if readerVersion == "main" || writerVersion == "main" {
		return nil
	}

	reader, err := semver.NewVersion(readerVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeJournalIncompatible, err, "invalid reader version '%s'", readerVersion)
	}

	writer, err := semver.NewVersion(writerVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeJournalIncompatible, err, "invalid journal version '%s'", writerVersion)
	}

	if reader.Major() != writer.Major() {
		return errors.Newf(errors.ErrCodeJournalIncompatible, "major version mismatch: journal was written by %d.x.x, this build is %d.x.x",
			writer.Major(), reader.Major())
	}

	if writer.Minor() > reader.Minor() {
		return errors.Newf(errors.ErrCodeJournalIncompatible, "journal was written by newer version %d.%d.x, this build is %d.%d.x",
			writer.Major(), writer.Minor(), reader.Major(), reader.Minor())
	}

	return nil
}
