package language

import (
	"context"

	"github.com/abadojack/whatlanggo"
)

// detectSimple reports the ISO 639-1 code without a confidence.
func detectSimple(ctx context.Context, text string) (string, *float64, error) {
	info := whatlanggo.Detect(text)
	if info.Script == nil || info.Lang < 0 {
		return Undetected, nil, nil
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return Undetected, nil, nil
	}
	return code, nil, nil
}
