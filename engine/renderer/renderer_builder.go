package renderer

// RendererBuilderOption is a functional option applied to the wgpu renderer during construction.
type RendererBuilderOption func(*wgpuRendererImpl)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *wgpuRendererImpl) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff or MSAA4x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *wgpuRendererImpl) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *wgpuRendererImpl) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the background colour of the viewport.
//
// Parameters:
//   - color: RGBA in the 0..1 range
//
// Returns:
//   - RendererBuilderOption: a function that sets the clear colour
func WithClearColor(color [4]float32) RendererBuilderOption {
	return func(r *wgpuRendererImpl) {
		r.clearColor = color
	}
}

// WithFrustumCulling toggles skipping content entities that lie outside the view.
//
// Parameters:
//   - enabled: true to cull (default)
//
// Returns:
//   - RendererBuilderOption: a function that sets frustum culling
func WithFrustumCulling(enabled bool) RendererBuilderOption {
	return func(r *wgpuRendererImpl) {
		r.cull = enabled
	}
}

// TerminalRendererOption is a functional option applied to the terminal renderer during construction.
type TerminalRendererOption func(*terminalRendererImpl)

// WithTerminalBackground sets the colour translucent primitives are blended against.
// It should match the terminal background.
//
// Parameters:
//   - color: RGBA in the 0..1 range, alpha is ignored
//
// Returns:
//   - TerminalRendererOption: a function that sets the background
func WithTerminalBackground(color [4]float32) TerminalRendererOption {
	return func(r *terminalRendererImpl) {
		r.background = color
	}
}

// WithTerminalCulling toggles skipping content entities that lie outside the view.
func WithTerminalCulling(enabled bool) TerminalRendererOption {
	return func(r *terminalRendererImpl) {
		r.cull = enabled
	}
}
