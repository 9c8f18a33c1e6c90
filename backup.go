package finance

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance/archive"
	"github.com/etnz/finance/failure"
	"github.com/etnz/finance/secure"
)

// files of a backup archive.
const (
	ManifestFile = "manifest.json"
	AccountsFile = "accounts.jsonl"
	EventsFile   = "events.jsonl"
	PricesFile   = "prices.jsonl"
)

// FormatVersion is the version of the backup layout.
const FormatVersion = 1

// Manifest describes a backup.
type Manifest struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Accounts int       `json:"accounts"`
	Events   int       `json:"events"`
	Prices   int       `json:"prices"`
}

// WriteBackup writes the live items of d to w, each list in its own file
// written with mode.
func WriteBackup(w *archive.Writer, d *DataSet, mode archive.Mode) error {
	m := Manifest{
		Version:  FormatVersion,
		Created:  time.Now().UTC().Truncate(time.Second),
		Accounts: d.Accounts.Count(),
		Events:   d.Events.Count(),
		Prices:   d.Prices.Count(),
	}
	files := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{ManifestFile, func(w io.Writer) error { return json.NewEncoder(w).Encode(m) }},
		{AccountsFile, func(w io.Writer) error { return EncodeAccounts(w, d.Accounts) }},
		{EventsFile, func(w io.Writer) error { return EncodeEvents(w, d.Events) }},
		{PricesFile, func(w io.Writer) error { return EncodePrices(w, d.Prices) }},
	}
	for _, f := range files {
		s, err := w.OutputStream(f.name, mode)
		if err != nil {
			return err
		}
		if err := f.encode(s); err != nil {
			return errors.Join(err, s.Close())
		}
		if err := s.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ReadBackup reads a CORE data set from r.
func ReadBackup(r *archive.Reader) (*DataSet, error) {
	if _, err := ReadManifest(r); err != nil {
		return nil, err
	}
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
		if err := readFile(r, f.name, f.decode); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ReadManifest reads the manifest of a backup.
func ReadManifest(r *archive.Reader) (*Manifest, error) {
	var m Manifest
	err := readFile(r, ManifestFile, func(in io.Reader) error {
		return failure.Wrap(failure.Data, json.NewDecoder(in).Decode(&m), "invalid manifest")
	})
	if err != nil {
		return nil, err
	}
	if m.Version > FormatVersion {
		return nil, failure.New(failure.Data, "backup format %d is newer than %d", m.Version, FormatVersion)
	}
	return &m, nil
}

// readFile reads the whole entry before decoding it, so that nothing is
// parsed before every digest has been checked.
func readFile(r *archive.Reader, name string, decode func(io.Reader) error) error {
	e := r.Entry(name)
	if e == nil {
		return failure.New(failure.Data, "backup has no %s", name)
	}
	in, err := r.InputStream(e)
	if err != nil {
		return err
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	return decode(bytes.NewReader(data))
}

// SaveBackup writes d to a new archive at path. Nothing is left at path
// on failure.
func SaveBackup(path string, keys *secure.Keys, d *DataSet, mode archive.Mode) error {
	w, err := archive.Create(path, keys)
	if err != nil {
		return err
	}
	if err := WriteBackup(w, d, mode); err != nil {
		return errors.Join(err, w.Abort())
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Info("backup saved", "path", path, "mode", mode, "accounts", d.Accounts.Count(), "events", d.Events.Count())
	return nil
}

// LoadBackup reads the archive at path.
func LoadBackup(path string, keys *secure.Keys) (*DataSet, error) {
	r, err := archive.Open(path, keys)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadBackup(r)
}
