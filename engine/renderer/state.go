package renderer

// BlendFactor scales a source or destination color before the blend operation.
type BlendFactor int

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
)

// BlendOperation combines the scaled source and destination values.
type BlendOperation int

const (
	BlendOperationAdd BlendOperation = iota
	BlendOperationSubtract
	BlendOperationMin
	BlendOperationMax
)

// BlendComponent describes how one channel group (color or alpha) is blended.
type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Operation BlendOperation
}

// ColorWriteMask selects which channels of the render target receive output.
type ColorWriteMask int

const (
	ColorWriteMaskRed ColorWriteMask = 1 << iota
	ColorWriteMaskGreen
	ColorWriteMaskBlue
	ColorWriteMaskAlpha

	ColorWriteMaskNone ColorWriteMask = 0
	ColorWriteMaskAll                = ColorWriteMaskRed | ColorWriteMaskGreen | ColorWriteMaskBlue | ColorWriteMaskAlpha
)

// BlendState is the blend configuration of the single render target a pipeline writes to.
// It is a plain value and compares with ==.
type BlendState struct {
	Enabled   bool
	Color     BlendComponent
	Alpha     BlendComponent
	WriteMask ColorWriteMask
}

var (
	// BlendStateOpaque replaces the destination with the source.
	BlendStateOpaque = BlendState{
		Enabled:   false,
		Color:     BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorZero, Operation: BlendOperationAdd},
		Alpha:     BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorZero, Operation: BlendOperationAdd},
		WriteMask: ColorWriteMaskAll,
	}

	// BlendStateAdditive adds the alpha-weighted source to the destination.
	BlendStateAdditive = BlendState{
		Enabled:   true,
		Color:     BlendComponent{SrcFactor: BlendFactorSrcAlpha, DstFactor: BlendFactorOne, Operation: BlendOperationAdd},
		Alpha:     BlendComponent{SrcFactor: BlendFactorSrcAlpha, DstFactor: BlendFactorOne, Operation: BlendOperationAdd},
		WriteMask: ColorWriteMaskAll,
	}

	// BlendStateAdditiveUnmultiplied adds the source to the destination without weighting the color by alpha.
	BlendStateAdditiveUnmultiplied = BlendState{
		Enabled:   true,
		Color:     BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorOne, Operation: BlendOperationAdd},
		Alpha:     BlendComponent{SrcFactor: BlendFactorSrcAlpha, DstFactor: BlendFactorOne, Operation: BlendOperationAdd},
		WriteMask: ColorWriteMaskAll,
	}

	// BlendStatePremultiplied draws a premultiplied-alpha source over the destination.
	BlendStatePremultiplied = BlendState{
		Enabled:   true,
		Color:     BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorOneMinusSrcAlpha, Operation: BlendOperationAdd},
		Alpha:     BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorOneMinusSrcAlpha, Operation: BlendOperationAdd},
		WriteMask: ColorWriteMaskAll,
	}
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FrontFace is the winding order that defines a front-facing triangle.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// RasterizerState controls primitive rasterization.
type RasterizerState struct {
	CullMode        CullMode
	FrontFace       FrontFace
	DepthClipEnable bool
}

// RasterizerStateCullBack is the common default.
var RasterizerStateCullBack = RasterizerState{CullMode: CullModeBack, FrontFace: FrontFaceCCW, DepthClipEnable: true}

// DepthStencilState controls depth testing. Stencil operations are not exposed.
type DepthStencilState struct {
	DepthTestEnabled  bool
	DepthWriteEnabled bool
}

var (
	// DepthStencilDefault tests and writes depth.
	DepthStencilDefault = DepthStencilState{DepthTestEnabled: true, DepthWriteEnabled: true}

	// DepthStencilNone disables depth testing and writing.
	DepthStencilNone = DepthStencilState{}
)
