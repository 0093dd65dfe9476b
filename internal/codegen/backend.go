package codegen

import (
	"errors"
	"fmt"

	"github.com/boombuler/barcode/code128"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// Names of the bundled linear backends, in default fallback order.
const (
	BackendBoombuler = "boombuler"
	BackendZXing     = "zxing"
)

// DefaultLinearBackends is the fallback order used when none is configured.
var DefaultLinearBackends = []string{BackendBoombuler, BackendZXing}

const backendHint = "enable a Code128 backend in render.linear_backends " +
	`(e.g. ["boombuler", "zxing"]) and make sure values only use ASCII characters`

// LinearBackend encodes a value as a Code128 bar pattern, one entry per module
// with true meaning a dark bar. Quiet zones are not included.
type LinearBackend interface {
	Name() string
	Modules(value string) ([]bool, error)
}

// LinearBackendsByName resolves names to backends, keeping their order.
// Unknown names resolve to a backend that always reports itself unavailable.
func LinearBackendsByName(names []string) []LinearBackend {
	out := make([]LinearBackend, 0, len(names))
	for _, n := range names {
		switch n {
		case BackendBoombuler:
			out = append(out, boombulerBackend{})
		case BackendZXing:
			out = append(out, zxingBackend{writer: oned.NewCode128Writer()})
		default:
			out = append(out, missingBackend{name: n})
		}
	}
	return out
}

// encodeLinear walks the chain and returns the first successful pattern.
func encodeLinear(chain []LinearBackend, value string) ([]bool, string, error) {
	var attempts []BackendFailure
	for _, b := range chain {
		mods, err := b.Modules(value)
		if err == nil && len(mods) > 0 {
			return mods, b.Name(), nil
		}
		if err == nil {
			err = errors.New("empty bar pattern")
		}
		reason := ReasonEncodeFailed
		if errors.Is(err, errBackendMissing) {
			reason = ReasonUnavailable
		}
		attempts = append(attempts, BackendFailure{Backend: b.Name(), Reason: reason, Err: err})
	}
	return nil, "", &BackendUnavailableError{Attempts: attempts, Hint: backendHint}
}

type boombulerBackend struct{}

func (boombulerBackend) Name() string { return BackendBoombuler }

func (boombulerBackend) Modules(value string) ([]bool, error) {
	bc, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	b := bc.Bounds()
	mods := make([]bool, b.Dx())
	for x := range mods {
		r, _, _, _ := bc.At(b.Min.X+x, b.Min.Y).RGBA()
		mods[x] = r < 0x8000
	}
	return mods, nil
}

type zxingBackend struct {
	writer gozxing.Writer
}

func (zxingBackend) Name() string { return BackendZXing }

func (z zxingBackend) Modules(value string) ([]bool, error) {
	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_MARGIN: 0,
	}
	m, err := z.writer.Encode(value, gozxing.BarcodeFormat_CODE_128, 1, 1, hints)
	if err != nil {
		return nil, err
	}
	mods := make([]bool, m.GetWidth())
	for x := range mods {
		mods[x] = m.Get(x, 0)
	}
	return mods, nil
}

type missingBackend struct {
	name string
}

func (m missingBackend) Name() string { return m.name }

func (m missingBackend) Modules(string) ([]bool, error) {
	return nil, fmt.Errorf("%w: %q", errBackendMissing, m.name)
}
