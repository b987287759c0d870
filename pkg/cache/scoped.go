package cache

import "strings"

// ScopedKeyer wraps a Keyer with a prefix so that several projects can share
// one remote cache without seeing each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "wafer-run-7:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. The prefix is inserted
// after "masktower:" so that Clear still finds scoped entries.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SummaryKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.scope(k.inner.SummaryKey(layoutHash, opts))
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.scope(k.inner.ArtifactKey(layoutHash, opts))
}

func (k *ScopedKeyer) scope(key string) string {
	return keyPrefix + k.prefix + strings.TrimPrefix(key, keyPrefix)
}
