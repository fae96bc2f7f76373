package order

import (
	"errors"
	"fmt"

	"github.com/hanwoori/sorikiosk/internal/menu"
)

// ErrUnsupportedLanguage is returned by [Parser.Parse] when the requested
// language has no registered keyword or quantity tables. It is the only
// error Parse returns: a transcript that simply matches nothing yields an
// empty or degraded result instead. Callers should surface an "unsupported
// language" message and must not fall back to degraded parsing.
var ErrUnsupportedLanguage = errors.New("order: unsupported language")

// unsupportedLanguage wraps [ErrUnsupportedLanguage] with the offending code.
func unsupportedLanguage(lang menu.Lang) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}
