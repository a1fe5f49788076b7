package translations

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/allanasp/haspen-cms-sub001/internal/contenttree"
	"github.com/allanasp/haspen-cms-sub001/internal/fieldtypes"
	"github.com/allanasp/haspen-cms-sub001/internal/identity"
	"github.com/allanasp/haspen-cms-sub001/internal/util"
)

// CompletionPercentage counts the leaf fields of the source tree and how many
// of them carry a non-empty value in the variant block with the same id. A
// source with no leaf fields is complete by definition.
func CompletionPercentage(source, variant *contenttree.Tree) float64 {
	if source == nil {
		return 100
	}
	index := blockIndex(variant)

	total := 0
	translated := 0
	walkBlocks(source.Body, func(block *contenttree.Block) {
		counterpart := index[block.UID]
		for name, value := range block.Fields {
			if contenttree.IsBlockList(value) {
				continue
			}
			total++
			if counterpart == nil {
				continue
			}
			if translatedValue, ok := counterpart.Fields[name]; ok && !fieldtypes.Of(translatedValue).IsEmpty() {
				translated++
			}
		}
	})
	if total == 0 {
		return 100
	}
	return math.Round(float64(translated)/float64(total)*10000) / 100
}

// NeedsSync reports whether the block id sets of source and variant differ,
// meaning a source edit added or removed blocks the variant does not mirror.
func NeedsSync(source, variant *contenttree.Tree) bool {
	sourceIDs := idSet(source)
	variantIDs := idSet(variant)
	if len(sourceIDs) != len(variantIDs) {
		return true
	}
	for uid := range sourceIDs {
		if _, ok := variantIDs[uid]; !ok {
			return true
		}
	}
	return false
}

// SyncStructure rebuilds the variant to mirror the source's block structure:
// which blocks exist, their order, and their component types. Leaf values
// named in fields are copied from the source; every other leaf keeps the
// variant's translated value when the block id exists in both trees and the
// value is non-empty, and falls back to the source value otherwise.
func SyncStructure(source, variant *contenttree.Tree, fields []string) *contenttree.Tree {
	if source == nil {
		return &contenttree.Tree{}
	}
	structural := make(map[string]bool, len(fields))
	for _, name := range fields {
		structural[name] = true
	}
	index := blockIndex(variant)
	return &contenttree.Tree{Body: syncBlocks(source.Body, index, structural)}
}

func syncBlocks(source []*contenttree.Block, index map[string]*contenttree.Block, structural map[string]bool) []*contenttree.Block {
	if len(source) == 0 {
		return nil
	}
	merged := make([]*contenttree.Block, 0, len(source))
	for _, block := range source {
		counterpart := index[block.UID]
		out := &contenttree.Block{
			UID:       block.UID,
			Component: block.Component,
			Fields:    make(map[string]any, len(block.Fields)),
		}
		for name, value := range block.Fields {
			if contenttree.IsBlockList(value) {
				children, _ := contenttree.ChildBlocks(value)
				out.Fields[name] = blocksToValue(syncBlocks(children, index, structural))
				continue
			}
			if structural[name] {
				out.Fields[name] = util.CloneValue(value)
				continue
			}
			if counterpart != nil {
				if translated, ok := counterpart.Fields[name]; ok && !fieldtypes.Of(translated).IsEmpty() {
					out.Fields[name] = util.CloneValue(translated)
					continue
				}
			}
			out.Fields[name] = util.CloneValue(value)
		}
		merged = append(merged, out)
	}
	return merged
}

func blocksToValue(blocks []*contenttree.Block) []any {
	out := make([]any, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, block.ToMap())
	}
	return out
}

// Fingerprints computes a stable per-block fingerprint for every block in the
// tree, keyed by block id. The fingerprint covers the component type, the
// leaf field values, and the ordered child ids, so any of those changing in
// the source shows up as drift against a stored baseline.
func Fingerprints(tree *contenttree.Tree) map[string]string {
	out := make(map[string]string)
	if tree == nil {
		return out
	}
	walkBlocks(tree.Body, func(block *contenttree.Block) {
		out[block.UID] = identity.BlockFingerprint(canonicalBlock(block))
	})
	return out
}

func canonicalBlock(block *contenttree.Block) string {
	names := make([]string, 0, len(block.Fields))
	for name := range block.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	builder.WriteString(block.Component)
	for _, name := range names {
		value := block.Fields[name]
		builder.WriteString("|")
		builder.WriteString(name)
		builder.WriteString("=")
		if contenttree.IsBlockList(value) {
			children, _ := contenttree.ChildBlocks(value)
			for i, child := range children {
				if i > 0 {
					builder.WriteString(",")
				}
				builder.WriteString(child.UID)
			}
			continue
		}
		if encoded, err := json.Marshal(value); err == nil {
			builder.Write(encoded)
		} else {
			fmt.Fprintf(&builder, "%v", value)
		}
	}
	return builder.String()
}

// DetectDrift compares a baseline fingerprint map against the current source
// tree and reports added, removed, and changed block ids.
func DetectDrift(baseline map[string]string, source *contenttree.Tree) *Drift {
	current := Fingerprints(source)
	drift := &Drift{}
	for uid, fingerprint := range current {
		stored, ok := baseline[uid]
		switch {
		case !ok:
			drift.Added = append(drift.Added, uid)
		case stored != fingerprint:
			drift.Changed = append(drift.Changed, uid)
		}
	}
	for uid := range baseline {
		if _, ok := current[uid]; !ok {
			drift.Removed = append(drift.Removed, uid)
		}
	}
	sort.Strings(drift.Added)
	sort.Strings(drift.Removed)
	sort.Strings(drift.Changed)
	return drift
}

func walkBlocks(blocks []*contenttree.Block, visit func(*contenttree.Block)) {
	for _, block := range blocks {
		visit(block)
		for _, value := range block.Fields {
			if contenttree.IsBlockList(value) {
				children, _ := contenttree.ChildBlocks(value)
				walkBlocks(children, visit)
			}
		}
	}
}

func blockIndex(tree *contenttree.Tree) map[string]*contenttree.Block {
	index := make(map[string]*contenttree.Block)
	if tree == nil {
		return index
	}
	walkBlocks(tree.Body, func(block *contenttree.Block) {
		index[block.UID] = block
	})
	return index
}

func idSet(tree *contenttree.Tree) map[string]struct{} {
	set := make(map[string]struct{})
	if tree == nil {
		return set
	}
	walkBlocks(tree.Body, func(block *contenttree.Block) {
		set[block.UID] = struct{}{}
	})
	return set
}
