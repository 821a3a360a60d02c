package core

// Configuration defines a global runtime configuration setting.
type Configuration struct {
	App      AppConfiguration
	Time     TimeConfiguration
	Renderer RendererConfiguration
	Loader   LoaderConfiguration
}

// AppConfiguration is used to configure the application surface.
type AppConfiguration struct {
	Title string

	// Width and Height set the initial drawable size. When zero, the
	// size is measured from the window instead.
	Width  int
	Height int
}

// TimeConfiguration is used to configure the frame timeline.
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out.
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the platform event poll interval in
	// milliseconds.
	EventPollDelay int
}

// RendererConfiguration is used to configure the renderer.
type RendererConfiguration struct {
	// Backend names a factory in the render registry. Empty picks
	// the highest-priority registered backend.
	Backend string

	ClearColor [4]float32
	VSync      bool

	ScreenWidth  uint32
	ScreenHeight uint32
}

// LoaderConfiguration is used to configure asset loading.
type LoaderConfiguration struct {
	// AssetRoot is the directory assets resolve against when no
	// other source is installed.
	AssetRoot string

	// TextureRoot prefixes relative texture paths produced by model
	// sources.
	TextureRoot string

	// DefaultShader is the shader materials fall back to when their
	// config names none.
	DefaultShader string
}
