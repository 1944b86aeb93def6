package flow

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"
)

// personalPromo derives a per-visitor code for the case when no campaign-wide
// code is configured. Stable within a day for the same visitor and show.
func personalPromo(userId int64, project string, now time.Time) string {
	seed := fmt.Sprintf("%d%s%s", userId, project, now.Format("20060102"))
	sum := fmt.Sprintf("%x", md5.Sum([]byte(seed)))
	return strings.ToUpper(sum[:8])
}
