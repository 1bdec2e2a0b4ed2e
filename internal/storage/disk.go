package storage

import (
	"os"
)

// DiskUsageBytes returns the total size in bytes of the given files. A SQLite database
// path also counts its -wal and -shm sidecar files. Missing paths contribute 0.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		for _, f := range []string{p, p + "-wal", p + "-shm"} {
			info, err := os.Stat(f)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return 0, err
			}
			if !info.IsDir() {
				total += info.Size()
			}
		}
	}
	return total, nil
}
