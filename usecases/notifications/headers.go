package notifications

// HeaderGenerator supplies the HTTP headers attached to every callback
// delivery, e.g. a static bearer token agreed with the client.
type HeaderGenerator interface {
	Headers() map[string]string
}

type StaticHeaderGenerator struct {
	headers map[string]string
}

func NewStaticHeaderGenerator(headers map[string]string) StaticHeaderGenerator {
	return StaticHeaderGenerator{headers: headers}
}

func (g StaticHeaderGenerator) Headers() map[string]string {
	return g.headers
}
