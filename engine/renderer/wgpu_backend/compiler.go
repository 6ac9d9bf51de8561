package wgpu_backend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Every effect uses bind group 0: binding 0 is the uniform block, bound with a dynamic offset, and
// texture slot n is bound at binding n+1.
const (
	uniformBinding     = 0
	textureBindingBase = 1
)

// bindGroupLayoutEntries describes the bind group of an effect.
func bindGroupLayoutEntries(bytecode *renderer.EffectBytecode) []wgpu.BindGroupLayoutEntry {
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	entries := make([]wgpu.BindGroupLayoutEntry, 0, 1+len(bytecode.Textures))

	if len(bytecode.Uniforms) > 0 {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uniformBinding,
			Visibility: visibility,
		}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.HasDynamicOffset = true
		entry.Buffer.MinBindingSize = uint64(renderer.UniformBlockSize(bytecode.Uniforms))
		entries = append(entries, entry)
	}

	for _, t := range bytecode.Textures {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(textureBindingBase + t.Slot),
			Visibility: wgpu.ShaderStageFragment,
		}
		entry.Texture.SampleType = textureSampleType(t.Kind)
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entries = append(entries, entry)
	}
	return entries
}

// vertexBufferLayouts maps the vertex streams of a pipeline description onto the inputs of its effect.
// Elements the effect does not read are skipped.
func vertexBufferLayouts(layout renderer.VertexLayout, inputs []renderer.VertexInput) ([]wgpu.VertexBufferLayout, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	locations := make(map[string]uint32, len(inputs))
	for _, in := range inputs {
		locations[in.Semantic] = in.Location
	}

	found := 0
	buffers := make([]wgpu.VertexBufferLayout, 0, len(layout))
	for _, l := range layout {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Elements))
		for _, e := range l.Elements {
			location, ok := locations[e.Semantic]
			if !ok {
				continue
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vertexFormat(e.Format),
				Offset:         uint64(e.Offset),
				ShaderLocation: location,
			})
			found++
		}
		buffers = append(buffers, wgpu.VertexBufferLayout{
			ArrayStride: uint64(l.Stride),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		})
	}

	if found != len(inputs) {
		return nil, fmt.Errorf("vertex layout provides %d of %d effect inputs", found, len(inputs))
	}
	return buffers, nil
}

func (b *backend) CompilePipeline(state *pipeline.State) (renderer.PipelineState, error) {
	bytecode := state.Effect
	if bytecode == nil {
		return nil, pipeline.ErrNoEffect
	}
	if state.RenderTargetFormat == renderer.PixelFormatUndefined {
		return nil, errors.New("pipeline has no render target format")
	}

	targetFormat, err := textureFormat(state.RenderTargetFormat)
	if err != nil {
		return nil, err
	}
	buffers, err := vertexBufferLayouts(state.InputElements, bytecode.VertexInputs)
	if err != nil {
		return nil, err
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: bytecode.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: bytecode.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %q: %w", bytecode.Name, err)
	}
	defer module.Release()

	bindGroupLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   bytecode.Name + " Bind Group Layout",
		Entries: bindGroupLayoutEntries(bytecode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout for %q: %w", bytecode.Name, err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            state.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	if err != nil {
		bindGroupLayout.Release()
		return nil, err
	}
	defer pipelineLayout.Release()

	var depthStencil *wgpu.DepthStencilState
	if state.DepthStencilFormat != renderer.PixelFormatUndefined {
		depthFormat, err := textureFormat(state.DepthStencilFormat)
		if err != nil {
			bindGroupLayout.Release()
			return nil, err
		}
		depthCompare := wgpu.CompareFunctionLess
		if !state.DepthStencilState.DepthTestEnabled {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: state.DepthStencilState.DepthWriteEnabled,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  state.Label + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: bytecode.VertexEntry,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: bytecode.FragmentEntry,
			Targets:    []wgpu.ColorTargetState{colorTarget(targetFormat, state.BlendState)},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology(state.PrimitiveType),
			FrontFace: frontFace(state.RasterizerState.FrontFace),
			CullMode:  cullMode(state.RasterizerState.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		bindGroupLayout.Release()
		return nil, fmt.Errorf("failed to create render pipeline %q: %w", state.Label, err)
	}

	b.logger.Debug("pipeline compiled", "label", state.Label, "effect", bytecode.Name, "format", state.RenderTargetFormat)
	return &pipelineState{
		label:       state.Label,
		pipeline:    created,
		layout:      bindGroupLayout,
		bytecode:    bytecode,
		uniformSize: renderer.UniformBlockSize(bytecode.Uniforms),
	}, nil
}
