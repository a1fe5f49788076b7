package contenttree

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/allanasp/haspen-cms-sub001/internal/fieldtypes"
	"github.com/allanasp/haspen-cms-sub001/internal/logging"
	"github.com/allanasp/haspen-cms-sub001/internal/schema"
	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

// DefaultMaxDepth caps recursion through nested block fields. Externally
// supplied ids make unbounded trees possible; excessive depth is reported as a
// validation error instead of walking forever.
const DefaultMaxDepth = 64

// SchemaResolver resolves a component's schema within a tenant scope.
// *schema.Registry satisfies it.
type SchemaResolver interface {
	Resolve(tenant, name string) (*schema.ComponentSchema, error)
}

// Result maps block paths (e.g. "body[0].columns[2]") to field-keyed errors.
// Block-level problems use the pseudo-fields "_uid" and "component".
type Result map[string]validation.Errors

// Valid reports whether the walk produced no errors.
func (r Result) Valid() bool { return len(r) == 0 }

func (r Result) add(path, field string, err error) {
	if err == nil {
		return
	}
	if r[path] == nil {
		r[path] = validation.Errors{}
	}
	r[path][field] = err
}

func (r Result) merge(path string, errs validation.Errors) {
	for field, err := range errs {
		r.add(path, field, err)
	}
}

// ValidatorOption configures the tree validator.
type ValidatorOption func(*Validator)

// WithMaxDepth overrides the recursion depth cap.
func WithMaxDepth(depth int) ValidatorOption {
	return func(v *Validator) {
		if depth > 0 {
			v.maxDepth = depth
		}
	}
}

// WithLogger attaches a logger provider.
func WithLogger(provider interfaces.LoggerProvider) ValidatorOption {
	return func(v *Validator) {
		v.logger = logging.TreeLogger(provider)
	}
}

// Validator walks content trees depth-first, delegating field checks to the
// schema validator and enforcing structural invariants: unique block ids,
// resolvable components, nesting whitelists and counts, bounded depth.
type Validator struct {
	schemas  *schema.Validator
	resolver SchemaResolver
	maxDepth int
	logger   interfaces.Logger
}

// NewValidator constructs a tree validator over the supplied schema validator
// and resolver.
func NewValidator(schemas *schema.Validator, resolver SchemaResolver, opts ...ValidatorOption) *Validator {
	v := &Validator{
		schemas:  schemas,
		resolver: resolver,
		maxDepth: DefaultMaxDepth,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate walks the whole tree and returns a (possibly empty) Result. It
// never fails out of band; callers decide whether to reject the write.
func (v *Validator) Validate(tenant string, tree *Tree) Result {
	result := Result{}
	if tree == nil {
		return result
	}

	walk := &treeWalk{
		validator: v,
		tenant:    tenant,
		seen:      map[string]string{},
		instances: map[string]int{},
		result:    result,
	}
	for i, block := range tree.Body {
		walk.visit(fmt.Sprintf("%s[%d]", KeyBody, i), block, 1)
	}

	if !result.Valid() {
		v.logger.Debug("contenttree.validate.failed", "tenant", tenant, "blocks_failed", len(result))
	}
	return result
}

// treeWalk carries the per-pass state: the seen-id set spans the entire tree,
// not one nesting level.
type treeWalk struct {
	validator *Validator
	tenant    string
	seen      map[string]string
	instances map[string]int
	result    Result
}

func (w *treeWalk) visit(path string, block *Block, depth int) {
	if block == nil {
		return
	}
	if depth > w.validator.maxDepth {
		w.result.add(path, KeyUID, ErrMaxDepthExceeded)
		return
	}

	w.checkUID(path, block)

	if block.Component == "" {
		w.result.add(path, KeyComponent, validation.NewError("cms.contenttree.component_required", "component reference is required"))
		w.syntaxWalk(path, block, depth)
		return
	}

	componentSchema, err := w.validator.resolver.Resolve(w.tenant, block.Component)
	if err != nil {
		w.result.add(path, KeyComponent, &UnknownComponentError{Component: block.Component})
		// No field checks against an unknown schema, but nested structures
		// are still checked for well-formedness.
		w.syntaxWalk(path, block, depth)
		return
	}

	w.checkInstanceBudget(path, block, componentSchema)
	if depth > 1 && componentSchema.Root && !componentSchema.Nestable {
		w.result.add(path, KeyComponent, ErrComponentNotNested)
	}

	if errs := w.validator.schemas.ValidateData(componentSchema, block.Fields); len(errs) > 0 {
		w.result.merge(path, errs)
	}

	for _, field := range componentSchema.Fields {
		if !fieldtypes.IsContainer(field.Type) {
			continue
		}
		raw, ok := block.Fields[field.Name]
		if !ok || raw == nil {
			continue
		}
		children, wellFormed := ChildBlocks(raw)
		if !wellFormed {
			// Shape errors are already reported by the blocks validator.
			continue
		}
		w.checkChildren(path, field, children)
		for i, child := range children {
			w.visit(fmt.Sprintf("%s.%s[%d]", path, field.Name, i), child, depth+1)
		}
	}
}

func (w *treeWalk) checkUID(path string, block *Block) {
	if block.UID == "" {
		w.result.add(path, KeyUID, ErrBlockIDRequired)
		return
	}
	if prior, dup := w.seen[block.UID]; dup {
		w.result.add(path, KeyUID, fmt.Errorf("%w: %q also used at %s", ErrDuplicateBlockID, block.UID, prior))
		return
	}
	w.seen[block.UID] = path
}

func (w *treeWalk) checkInstanceBudget(path string, block *Block, componentSchema *schema.ComponentSchema) {
	if componentSchema.MaxInstances == nil {
		return
	}
	key := schema.NormalizeName(block.Component)
	w.instances[key]++
	if w.instances[key] > *componentSchema.MaxInstances {
		w.result.add(path, KeyComponent, validation.NewError(
			"cms.contenttree.max_instances",
			fmt.Sprintf("component %q exceeds its limit of %d instances", block.Component, *componentSchema.MaxInstances),
		))
	}
}

func (w *treeWalk) checkChildren(path string, field schema.Field, children []*Block) {
	if max := field.MaximumChildren; max != nil && len(children) > *max {
		w.result.add(path, field.Name, validation.NewError(
			"cms.contenttree.max_children",
			fmt.Sprintf("holds %d blocks, at most %d allowed", len(children), *max),
		))
	}
	if min := field.MinimumChildren; min != nil && len(children) < *min {
		w.result.add(path, field.Name, validation.NewError(
			"cms.contenttree.min_children",
			fmt.Sprintf("holds %d blocks, at least %d required", len(children), *min),
		))
	}
	if len(field.ComponentWhitelist) == 0 {
		return
	}
	allowed := make(map[string]struct{}, len(field.ComponentWhitelist))
	for _, name := range field.ComponentWhitelist {
		allowed[schema.NormalizeName(name)] = struct{}{}
	}
	for _, child := range children {
		if _, ok := allowed[schema.NormalizeName(child.Component)]; !ok {
			w.result.add(path, field.Name, validation.NewError(
				"cms.contenttree.whitelist",
				fmt.Sprintf("component %q is not allowed in this field", child.Component),
			))
			return
		}
	}
}

// syntaxWalk checks nested structures under a block whose schema is unknown:
// ids must still be present and unique, but no field-level validation runs.
func (w *treeWalk) syntaxWalk(path string, block *Block, depth int) {
	if depth > w.validator.maxDepth {
		return
	}
	for name, raw := range block.Fields {
		if !IsBlockList(raw) {
			continue
		}
		children, ok := ChildBlocks(raw)
		if !ok {
			continue
		}
		for i, child := range children {
			childPath := fmt.Sprintf("%s.%s[%d]", path, name, i)
			w.checkUID(childPath, child)
			w.syntaxWalk(childPath, child, depth+1)
		}
	}
}
