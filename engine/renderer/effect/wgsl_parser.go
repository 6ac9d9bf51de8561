package effect

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

// wgslUniformTypeMap maps the WGSL types a uniform block may hold to their renderer uniform type
var wgslUniformTypeMap = map[string]renderer.UniformType{
	"mat4x4<f32>": renderer.UniformTypeMat4,
	"mat4x4f":     renderer.UniformTypeMat4,
	"vec4<f32>":   renderer.UniformTypeVec4,
	"vec4f":       renderer.UniformTypeVec4,
	"vec2<f32>":   renderer.UniformTypeVec2,
	"vec2f":       renderer.UniformTypeVec2,
	"f32":         renderer.UniformTypeFloat,
	"i32":         renderer.UniformTypeInt,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field or parameter: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// vertexParamsRegex captures the parameter list of the @vertex function, allowing one level of
	// parentheses for attributes such as @location(0)
	vertexParamsRegex = regexp.MustCompile(`(?s)@vertex\s+fn\s+\w+\s*\(((?:[^()]|\([^()]*\))*)\)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> params: FogUniforms;
	// or handle types: @group(0) @binding(1) var bound_buffer: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// reflectSource reads the entry points, vertex inputs, uniform block and texture slots declared by
// pre-processed WGSL. Declarations that are absent stay empty; declarations the renderer cannot bind
// are an error.
//
// Parameters:
//   - source: the pre-processed WGSL source
//
// Returns:
//   - reflection: the declared interface of the effect
//   - error: an error naming the first declaration outside the binding convention
func reflectSource(source string) (reflection, error) {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	uniforms, textures, err := parseBindings(cleaned, structs)
	if err != nil {
		return reflection{}, err
	}

	return reflection{
		vertexEntry:   parseEntryPoint(cleaned, stageVertex),
		fragmentEntry: parseEntryPoint(cleaned, stageFragment),
		vertexInputs:  parseVertexInputs(cleaned, structs),
		uniforms:      uniforms,
		textures:      textures,
	}, nil
}

// parseBindings extracts the @group(N) @binding(M) resource declarations of an effect. Binding 0 must
// be the uniform block, a struct of types listed in wgslUniformTypeMap; binding 1+n is texture slot n.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - structs: the struct blocks of the source
//
// Returns:
//   - []renderer.UniformField: the uniform block members in declaration order, or nil
//   - []renderer.TextureBinding: the texture slots sorted by slot, or nil
//   - error: an error for resources outside group 0, non-uniform binding 0, or unsupported types
func parseBindings(source string, structs []parsedStruct) ([]renderer.UniformField, []renderer.TextureBinding, error) {
	var uniforms []renderer.UniformField
	var textures []renderer.TextureBinding

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(source, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		if group != 0 {
			return nil, nil, fmt.Errorf("%s: resources must be declared in group 0, found group %d", varName, group)
		}

		if binding == 0 {
			if addressSpace != "uniform" {
				return nil, nil, fmt.Errorf("%s: binding 0 must be a var<uniform> block", varName)
			}
			fields, err := uniformFields(typeName, structs)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", varName, err)
			}
			uniforms = fields
			continue
		}

		if addressSpace != "" {
			return nil, nil, fmt.Errorf("%s: binding %d must be a texture, found var<%s>", varName, binding, addressSpace)
		}
		kind, err := textureKind(typeName)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", varName, err)
		}
		textures = append(textures, renderer.TextureBinding{Slot: binding - 1, Kind: kind})
	}

	slices.SortFunc(textures, func(a, b renderer.TextureBinding) int {
		return a.Slot - b.Slot
	})
	return uniforms, textures, nil
}

// uniformFields resolves the struct bound as the uniform block into renderer uniform fields.
// Each field is keyed by the PascalCase form of its WGSL name, e.g. z_projection becomes ZProjection.
func uniformFields(typeName string, structs []parsedStruct) ([]renderer.UniformField, error) {
	i := slices.IndexFunc(structs, func(ps parsedStruct) bool { return ps.name == typeName })
	if i < 0 {
		return nil, fmt.Errorf("uniform block type %q is not a struct of this source", typeName)
	}

	fields := make([]renderer.UniformField, 0, len(structs[i].fields))
	for _, f := range structs[i].fields {
		t, ok := wgslUniformTypeMap[f.typeName]
		if !ok {
			return nil, fmt.Errorf("uniform %s.%s has unsupported type %s", typeName, f.name, f.typeName)
		}
		fields = append(fields, renderer.UniformField{Key: renderer.ParameterKey(pascalCase(f.name)), Type: t})
	}
	return fields, nil
}

// textureKind maps a WGSL texture type to the sample type its slot is bound with.
// Effects read textures with textureLoad, so float textures bind as unfilterable.
func textureKind(typeName string) (renderer.TextureKind, error) {
	base, param := splitTypeParams(typeName)
	switch {
	case base == "texture_depth_2d":
		return renderer.TextureKindDepth, nil
	case base == "texture_2d" && param == "f32":
		return renderer.TextureKindUnfilterableFloat, nil
	default:
		return 0, fmt.Errorf("unsupported texture type %s", typeName)
	}
}

// parseEntryPoint extracts the entry point function name for the given shader stage
// from WGSL source. Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - stage: the shader stage to search for
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, stage shaderStage) string {
	var re *regexp.Regexp
	switch stage {
	case stageVertex:
		re = vertexEntryRegex
	case stageFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return ""
}

// parseVertexInputs extracts the @location inputs of the @vertex function. Inputs may be declared
// as parameters or as the fields of a vertex input struct parameter. Each input's semantic is its
// name in upper case, so a position parameter reads the POSITION vertex element.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - structs: the struct blocks of the source
//
// Returns:
//   - []renderer.VertexInput: the inputs sorted by location, or nil if the vertex stage reads none
func parseVertexInputs(source string, structs []parsedStruct) []renderer.VertexInput {
	match := vertexParamsRegex.FindStringSubmatch(source)
	if match == nil {
		return nil
	}

	var inputs []renderer.VertexInput
	for _, param := range parseStructFields(match[1]) {
		if param.isBuiltin {
			continue
		}
		if param.location >= 0 {
			inputs = append(inputs, renderer.VertexInput{Semantic: strings.ToUpper(param.name), Location: uint32(param.location)})
			continue
		}
		for _, ps := range structs {
			if ps.name != param.typeName || !isVertexInputStruct(ps) {
				continue
			}
			for _, f := range ps.fields {
				inputs = append(inputs, renderer.VertexInput{Semantic: strings.ToUpper(f.name), Location: uint32(f.location)})
			}
		}
	}

	slices.SortFunc(inputs, func(a, b renderer.VertexInput) int {
		return int(a.Location) - int(b.Location)
	})
	return inputs
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses a comma separated list of fields or parameters, extracting
// @location and @builtin attributes along with the name and type
//
// Parameters:
//   - body: the content between the braces of a struct or the parentheses of a function
//
// Returns:
//   - []parsedField: all fields found in the body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])

		fields = append(fields, field)
	}

	return fields
}

// isVertexInputStruct returns true if the struct is a pure vertex input, meaning
// it has at least one @location field and zero @builtin fields. This distinguishes
// vertex input structs from vertex output structs which mix @location with @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// splitTypeParams splits a WGSL parameterized type into its base name and parameter string.
// For "texture_2d<f32>" returns ("texture_2d", "f32").
// For "texture_depth_2d" (no params) returns ("texture_depth_2d", "").
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// pascalCase turns a snake_case WGSL identifier into the PascalCase form used for parameter keys.
func pascalCase(name string) string {
	var sb strings.Builder
	for part := range strings.SplitSeq(name, "_") {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source so they
// do not interfere with struct and field parsing
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments (/* ... */) from WGSL source,
// handling nested block comments
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets or
// parentheses. This keeps types like array<T, N> and attributes like @interpolate(flat, either) whole.
//
// Parameters:
//   - s: the string to split, typically a struct body or a parameter list
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
