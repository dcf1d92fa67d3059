package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
)

// DecodeFile parses an HCL document and returns its content as a native
// map. Attributes become keys; a block `type "a" "b" { ... }` becomes the
// nested entry [type][a][b]. Expressions are evaluated without variables, so
// parameter references stay as `%name%` strings for later expansion.
func DecodeFile(ctx context.Context, filename string, src []byte) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to decode HCL file %s: unexpected body type %T", filename, file.Body)
	}

	out, err := decodeBody(NewConverter(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}

	logger.Debug("Decoded HCL document.", "file", filename, "keys", len(out))
	return out, nil
}

func decodeBody(conv *Converter, body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any)

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		attr := body.Attributes[name]
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := conv.FromCtyValue(val)
		if err != nil {
			return nil, fmt.Errorf("%s: attribute '%s': %w", attr.SrcRange, name, err)
		}
		out[name] = native
	}

	for _, block := range body.Blocks {
		content, err := decodeBody(conv, block.Body)
		if err != nil {
			return nil, err
		}
		if err := insertBlock(out, append([]string{block.Type}, block.Labels...), content, block.DefRange()); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// insertBlock places content at the nested key path, creating intermediate
// maps. Defining the same block twice, or a block over an attribute, is an
// error.
func insertBlock(dst map[string]any, keys []string, content map[string]any, rng hcl.Range) error {
	cur := dst
	for i, key := range keys {
		last := i == len(keys)-1
		existing, found := cur[key]
		if last {
			if found {
				return fmt.Errorf("%s: duplicate definition of '%s'", rng, key)
			}
			cur[key] = content
			return nil
		}
		if !found {
			next := make(map[string]any)
			cur[key] = next
			cur = next
			continue
		}
		next, ok := existing.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: block '%s' conflicts with an attribute of the same name", rng, key)
		}
		cur = next
	}
	return nil
}
