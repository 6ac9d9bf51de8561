// pre_processor.go implements the effect source pre-processor. It scans WGSL source for
// //@oxy:include annotations and replaces each with a named chunk of shared WGSL registered
// on the library, so effects can share vertex stages and helper functions.
package effect

import (
	"fmt"
	"strings"
)

const includeAnnotation = "//@oxy:include"

// maxIncludeDepth bounds nested includes.
const maxIncludeDepth = 8

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	chunks map[string]string
}

// PreProcessor expands //@oxy:include annotations in WGSL source.
type PreProcessor interface {
	// RegisterChunk makes source available to //@oxy:include name. Registering a name again replaces it.
	//
	// Parameters:
	//   - name: the include name
	//   - source: the WGSL text injected in place of the annotation
	RegisterChunk(name, source string)

	// Process expands every include in source, recursively.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error naming the line of a malformed annotation or unknown chunk
	Process(source string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor with no registered chunks.
func NewPreProcessor() PreProcessor {
	return &preProcessor{chunks: make(map[string]string)}
}

func (p *preProcessor) RegisterChunk(name, source string) {
	p.chunks[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	return p.process(source, 0)
}

func (p *preProcessor) process(source string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("includes nested deeper than %d", maxIncludeDepth)
	}

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includeAnnotation)
		if !ok {
			out = append(out, line)
			continue
		}

		args := strings.Fields(rest)
		if len(args) != 1 {
			return "", fmt.Errorf("line %d: %s expects exactly one chunk name", i+1, includeAnnotation)
		}
		chunk, ok := p.chunks[args[0]]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, args[0])
		}
		expanded, err := p.process(chunk, depth+1)
		if err != nil {
			return "", fmt.Errorf("include %q: %w", args[0], err)
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}
