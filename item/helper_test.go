package item

import (
	"fmt"
	"slices"
	"strings"
)

// account is a minimal values type sorted by name.
type account struct {
	name    string
	kind    string
	balance int
	tags    []string
}

const (
	fieldName = iota
	fieldKind
	fieldBalance
	fieldTags
)

func (a account) Compare(b account) int { return strings.Compare(a.name, b.name) }
func (a account) Label() string         { return a.name }

func (a account) Equal(b account) bool {
	return a.name == b.name && a.kind == b.kind && a.balance == b.balance && slices.Equal(a.tags, b.tags)
}

func (a account) Copy() account {
	a.tags = slices.Clone(a.tags)
	return a
}

func (a account) FieldChanged(field int, ref account) bool {
	switch field {
	case fieldName:
		return a.name != ref.name
	case fieldKind:
		return a.kind != ref.kind
	case fieldBalance:
		return a.balance != ref.balance
	case fieldTags:
		return !slices.Equal(a.tags, ref.tags)
	default:
		return false
	}
}

func (a account) FormatField(field int) string {
	switch field {
	case fieldName:
		return a.name
	case fieldKind:
		return a.kind
	case fieldBalance:
		return fmt.Sprint(a.balance)
	case fieldTags:
		return strings.Join(a.tags, ",")
	default:
		return ""
	}
}

// entry is sorted on key only, label tells equal keys apart.
type entry struct {
	key   int
	label string
}

func (e entry) Compare(f entry) int                  { return e.key - f.key }
func (e entry) Equal(f entry) bool                   { return e == f }
func (e entry) Copy() entry                          { return e }
func (e entry) FieldChanged(field int, f entry) bool { return e != f }
func (e entry) FormatField(field int) string         { return e.label }

// coreAccounts returns a CORE list of CLEAN accounts with ids 1, 2, ...
func coreAccounts(names ...string) *List[account] {
	l := NewList[account](Core, nil)
	for i, name := range names {
		if _, err := l.AddWithID(i+1, account{name: name, kind: "current"}); err != nil {
			panic(err)
		}
	}
	return l
}

// names returns the names of the visible items in order.
func names(l *List[account]) []string {
	var s []string
	for it := range l.All() {
		s = append(s, it.Values().name)
	}
	return s
}

// states returns the states by id.
func states(l *List[account]) map[int]string {
	m := make(map[int]string)
	for it := range l.items() {
		m[it.ID()] = it.State().String()
	}
	return m
}
