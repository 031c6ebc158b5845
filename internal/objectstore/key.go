// Package objectstore uploads complaint evidence images to S3 or Cloudinary
// and returns the public URL stored on the complaint.
package objectstore

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewKey builds "<unix-millis>-<8 hex><ext>" from the original filename.
// The random suffix keeps two uploads in the same millisecond apart.
func NewKey(filename string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix + filepath.Ext(filename)
}
