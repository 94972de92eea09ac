package romstore

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrStorageUnavailable indicates the volume backing a scan root vanished
// mid-scan. Unlike per-item read errors this is fatal to the running job.
var ErrStorageUnavailable = errors.New("storage volume unavailable")

// CheckVolume probes whether the filesystem backing path still answers.
// A failed statfs means the medium itself is gone, not just one file.
func CheckVolume(path string) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, path, err)
	}
	return nil
}
