package finance

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance/failure"
)

// A books directory holds the working copy of a data set in clear, one
// JSONL file per list, named like the backup files.

// LoadDir reads the books directory dir into a CORE data set. Missing
// files are empty lists.
func LoadDir(dir string) (*DataSet, error) {
	d := NewDataSet()
	files := []struct {
		name   string
		decode func(io.Reader) error
	}{
		{AccountsFile, func(r io.Reader) error { return DecodeAccounts(r, d.Accounts) }},
		{EventsFile, func(r io.Reader) error { return DecodeEvents(r, d.Events) }},
		{PricesFile, func(r io.Reader) error { return DecodePrices(r, d.Prices) }},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		in, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no list file", "path", path)
			continue
		}
		if err != nil {
			return nil, failure.Wrap(failure.IO, err, "cannot open %q", path)
		}
		err = f.decode(in)
		in.Close()
		if err != nil {
			return nil, failure.Wrap(failure.KindOf(err), err, "cannot decode %q", path)
		}
	}
	return d, nil
}

// SaveDir writes the live items of d into the books directory dir, creating
// it if needed. Each file is written aside and renamed over the previous
// one.
func SaveDir(dir string, d *DataSet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure.Wrap(failure.IO, err, "cannot create %q", dir)
	}
	files := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{AccountsFile, func(w io.Writer) error { return EncodeAccounts(w, d.Accounts) }},
		{EventsFile, func(w io.Writer) error { return EncodeEvents(w, d.Events) }},
		{PricesFile, func(w io.Writer) error { return EncodePrices(w, d.Prices) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.encode); err != nil {
			return err
		}
	}
	log.Debug("books saved", "dir", dir)
	return nil
}

func writeFile(path string, encode func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return failure.Wrap(failure.IO, err, "cannot create %q", path)
	}
	if err := encode(tmp); err != nil {
		return errors.Join(err, tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(failure.Wrap(failure.IO, err, "cannot write %q", path), os.Remove(tmp.Name()))
	}
	return failure.Wrap(failure.IO, os.Rename(tmp.Name(), path), "cannot replace %q", path)
}
