// Package reconcile merges a locally cached item collection with a freshly
// fetched authoritative one. The remote list wins on conflict; local items
// the server has not echoed back yet are preserved.
package reconcile

import (
	"slices"

	"github.com/erazemk/najdeno/internal/model"
)

// Merge produces a single consistent item list from the previous local
// snapshot and a freshly fetched remote list.
//
// For each remote item, an existing local entry is matched first by
// canonical identifier. If the remote item finds no identifier match, it
// may instead claim a pending local entry (one without an identifier,
// awaiting server confirmation) whose creation timestamp matches exactly —
// but only when exactly one such pending entry exists, so that two distinct
// items created in the same millisecond are never silently collapsed.
// Matched entries are replaced in place by the remote record; unmatched
// remote entries are appended; local entries with no remote counterpart are
// preserved unchanged.
//
// Merge must not be called when the remote fetch failed; the caller keeps
// the previous snapshot unmodified in that case.
func Merge(local, remote []model.Item) []model.Item {
	merged := slices.Clone(local)

	for _, r := range remote {
		if idx := matchIndex(merged, r); idx >= 0 {
			merged[idx] = overlay(merged[idx], r)
		} else {
			merged = append(merged, r)
		}
	}

	return Dedup(merged)
}

// Dedup collapses entries sharing the composite key (identifier, timestamp)
// to a single entry, keeping the first occurrence. Pending entries (no
// identifier) are never collapsed with each other: distinct items created
// in the same millisecond are a real possibility, not duplicates.
// Idempotent.
func Dedup(items []model.Item) []model.Item {
	type key struct {
		id string
		ts int64
	}

	seen := make(map[key]struct{}, len(items))
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.Pending() {
			out = append(out, it)
			continue
		}
		k := key{it.ID, it.Timestamp}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// matchIndex finds the local entry the remote item corresponds to, or -1.
func matchIndex(local []model.Item, remote model.Item) int {
	if remote.ID != "" {
		for i, it := range local {
			if it.ID == remote.ID {
				return i
			}
		}
	}

	// Timestamp fallback applies only to pending local entries (optimistic
	// inserts without an identifier), and only when unambiguous.
	if remote.Timestamp == 0 {
		return -1
	}
	match := -1
	for i, it := range local {
		if !it.Pending() || it.Timestamp != remote.Timestamp {
			continue
		}
		if match >= 0 {
			return -1 // two pending entries share the millisecond; leave both
		}
		match = i
	}
	return match
}

// overlay replaces a matched local entry with the authoritative remote
// record. Remote fields win; only fields the remote record omits entirely
// (no identifier, no timestamp, no images) are inherited from the local
// entry, which keeps optimistic inserts intact while awaiting confirmation.
func overlay(local, remote model.Item) model.Item {
	out := remote
	if out.ID == "" {
		out.ID = local.ID
	}
	if out.Timestamp == 0 {
		out.Timestamp = local.Timestamp
	}
	if len(out.Images) == 0 {
		out.Images = local.Images
	}
	return out
}
