package renderer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/etnz/finance/archive"
)

// EntriesMarkdown renders the files of an archive: their size, how they are
// stored and whether they are signed.
func EntriesMarkdown(title string, entries []*archive.FileEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(entries) == 0 {
		b.WriteString("Empty archive.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| File | Mode | Size | Stored | Signed |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|:---:|")
	var size, stored int64
	for _, e := range entries {
		var raw int64
		if e.Raw != nil {
			raw = e.Raw.Length
		}
		signed := ""
		if len(e.Signature) > 0 {
			signed = "yes"
		}
		row(&b, e.Name, e.Mode().String(), byteSize(raw), byteSize(e.Size()), signed)
		size += raw
		stored += e.Size()
	}
	row(&b, "**Total**", "", "**"+byteSize(size)+"**", "**"+byteSize(stored)+"**", "")
	return b.String()
}

func byteSize(n int64) string { return humanize.IBytes(uint64(max(n, 0))) }
