package refbackend

import (
	"fmt"
	"os"
	"sync/atomic"
)

var tmpCounter int64

// freshTmpPath allocates a unique path under the system temp
// directory, backing CHOOSE_TMP_FILENAME and every instruction that
// implicitly needs a fresh output file (COPY_FILE's destination,
// RUN_EXTERNAL's output files).
func freshTmpPath() string {
	n := atomic.AddInt64(&tmpCounter, 1)
	return fmt.Sprintf("%s/dfmid-%d-%d", os.TempDir(), os.Getpid(), n)
}
