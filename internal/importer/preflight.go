//go:build !windows

package importer

import (
	"syscall"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

const (
	tempDirSlack    = 100 << 20
	archiveDirSlack = 100 << 20
)

// CheckDiskSpace verifies the temp and archive filesystems have enough
// headroom for an import of backupSize bytes: the temp dir needs roughly
// 2x the backup size (decoded db + extracted frames) plus slack, and the
// archive dir needs roughly 1x plus slack. Matches check_disk_space /
// available_space in the original source.
func CheckDiskSpace(tempDir, archiveDir string, backupSize int64) error {
	requiredTemp := backupSize*2 + tempDirSlack
	requiredArchive := backupSize + archiveDirSlack

	availTemp, err := availableSpace(tempDir)
	if err != nil {
		return archiveerr.Wrap(archiveerr.KindInvalidArgument, "check temp disk space", err)
	}
	if availTemp < uint64(requiredTemp) {
		return archiveerr.InvalidArgument("not enough temp disk space: need %s, have %s",
			FormatBytes(requiredTemp), FormatBytes(int64(availTemp)))
	}

	availArchive, err := availableSpace(archiveDir)
	if err != nil {
		return archiveerr.Wrap(archiveerr.KindInvalidArgument, "check archive disk space", err)
	}
	if availArchive < uint64(requiredArchive) {
		return archiveerr.InvalidArgument("not enough archive disk space: need %s, have %s",
			FormatBytes(requiredArchive), FormatBytes(int64(availArchive)))
	}
	return nil
}

func availableSpace(dir string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
