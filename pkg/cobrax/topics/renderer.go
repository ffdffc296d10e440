package topics

// Renderer formats topic content for terminal display. The ext
// argument is the source file's extension including the dot.
type Renderer interface {
	Render(content string, ext string) string
}

// PlainRenderer passes content through untouched.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, ext string) string {
	return content
}
