package routing

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// fingerprint hashes a registration set, including its order. Equal
// fingerprints mean that a rebuild would produce the same behavior.
func fingerprint(registrations []*Registration) uint64 {
	d := xxhash.New()
	for _, r := range registrations {
		d.WriteString(r.id())
		d.WriteString("\x00")
		d.WriteString(r.Pattern)
		d.WriteString("\x00")
		d.WriteString(strconv.Itoa(int(r.Kind)))
		d.WriteString("\x00")
		d.WriteString(r.ContentId)
		d.WriteString("\x01")
	}

	return d.Sum64()
}
