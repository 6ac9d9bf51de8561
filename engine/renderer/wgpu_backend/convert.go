package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

var textureFormats = map[renderer.PixelFormat]wgpu.TextureFormat{
	renderer.PixelFormatR32G32Float:  wgpu.TextureFormatRG32Float,
	renderer.PixelFormatRGBA16Float:  wgpu.TextureFormatRGBA16Float,
	renderer.PixelFormatRGBA8Unorm:   wgpu.TextureFormatRGBA8Unorm,
	renderer.PixelFormatBGRA8Unorm:   wgpu.TextureFormatBGRA8Unorm,
	renderer.PixelFormatDepth24Plus:  wgpu.TextureFormatDepth24Plus,
	renderer.PixelFormatDepth32Float: wgpu.TextureFormatDepth32Float,
}

// textureFormat returns the wgpu format of f.
func textureFormat(f renderer.PixelFormat) (wgpu.TextureFormat, error) {
	tf, ok := textureFormats[f]
	if !ok {
		return wgpu.TextureFormatUndefined, fmt.Errorf("unsupported pixel format %v", f)
	}
	return tf, nil
}

// pixelFormat returns the renderer format of a wgpu format, or PixelFormatUndefined.
func pixelFormat(tf wgpu.TextureFormat) renderer.PixelFormat {
	for pf, candidate := range textureFormats {
		if candidate == tf {
			return pf
		}
	}
	return renderer.PixelFormatUndefined
}

func topology(p renderer.PrimitiveType) wgpu.PrimitiveTopology {
	switch p {
	case renderer.PrimitiveTypeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case renderer.PrimitiveTypeLineList:
		return wgpu.PrimitiveTopologyLineList
	case renderer.PrimitiveTypeLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case renderer.PrimitiveTypePointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func cullMode(c renderer.CullMode) wgpu.CullMode {
	switch c {
	case renderer.CullModeFront:
		return wgpu.CullModeFront
	case renderer.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func frontFace(f renderer.FrontFace) wgpu.FrontFace {
	if f == renderer.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func blendFactor(f renderer.BlendFactor) wgpu.BlendFactor {
	switch f {
	case renderer.BlendFactorZero:
		return wgpu.BlendFactorZero
	case renderer.BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case renderer.BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case renderer.BlendFactorDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case renderer.BlendFactorOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	default:
		return wgpu.BlendFactorOne
	}
}

func blendOperation(o renderer.BlendOperation) wgpu.BlendOperation {
	switch o {
	case renderer.BlendOperationSubtract:
		return wgpu.BlendOperationSubtract
	case renderer.BlendOperationMin:
		return wgpu.BlendOperationMin
	case renderer.BlendOperationMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

func blendComponent(c renderer.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		SrcFactor: blendFactor(c.SrcFactor),
		DstFactor: blendFactor(c.DstFactor),
		Operation: blendOperation(c.Operation),
	}
}

// colorTarget converts a blend state into the single color target of a pipeline.
func colorTarget(format wgpu.TextureFormat, b renderer.BlendState) wgpu.ColorTargetState {
	state := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: writeMask(b.WriteMask),
	}
	if b.Enabled {
		state.Blend = &wgpu.BlendState{
			Color: blendComponent(b.Color),
			Alpha: blendComponent(b.Alpha),
		}
	}
	return state
}

func writeMask(m renderer.ColorWriteMask) wgpu.ColorWriteMask {
	var mask wgpu.ColorWriteMask
	if m&renderer.ColorWriteMaskRed != 0 {
		mask |= wgpu.ColorWriteMaskRed
	}
	if m&renderer.ColorWriteMaskGreen != 0 {
		mask |= wgpu.ColorWriteMaskGreen
	}
	if m&renderer.ColorWriteMaskBlue != 0 {
		mask |= wgpu.ColorWriteMaskBlue
	}
	if m&renderer.ColorWriteMaskAlpha != 0 {
		mask |= wgpu.ColorWriteMaskAlpha
	}
	return mask
}

func vertexFormat(f renderer.VertexFormat) wgpu.VertexFormat {
	switch f {
	case renderer.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case renderer.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	default:
		return wgpu.VertexFormatFloat32x3
	}
}

func indexFormat(f renderer.IndexFormat) wgpu.IndexFormat {
	if f == renderer.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func textureSampleType(k renderer.TextureKind) wgpu.TextureSampleType {
	switch k {
	case renderer.TextureKindFloat:
		return wgpu.TextureSampleTypeFloat
	case renderer.TextureKindDepth:
		return wgpu.TextureSampleTypeDepth
	default:
		return wgpu.TextureSampleTypeUnfilterableFloat
	}
}
